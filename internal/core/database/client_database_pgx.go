package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/DanielChahine0/Intern-Compass/internal/config"
	"github.com/DanielChahine0/Intern-Compass/internal/core"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: sqlDB}, nil
}

// DB exposes the underlying pool so the vector store can share it.
func (c *DatabaseClient) DB() *sql.DB { return c.db }

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.FirstName, user.Email, user.PasswordHash, user.IsAdmin, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Documents

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	const q = `
		INSERT INTO documents
			(id, owner_id, title, content, access_scope, status, tags, storage_url, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()), COALESCE($10, now()))
	`
	_, err = c.db.ExecContext(ctx, q,
		doc.ID, doc.OwnerID, doc.Title, doc.Content, doc.AccessScope, doc.Status, tags, doc.StorageURL,
		doc.CreatedAt, doc.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, owner_id, title, content, access_scope, status, tags, storage_url, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	var (
		d    models.Document
		tags []byte
	)
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.OwnerID, &d.Title, &d.Content, &d.AccessScope, &d.Status, &tags, &d.StorageURL,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &d.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocuments(ctx context.Context) ([]models.Document, error) {
	const q = `
		SELECT id, owner_id, title, access_scope, status, tags, storage_url, created_at, updated_at
		FROM documents
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var (
			d    models.Document
			tags []byte
		)
		if err := rows.Scan(
			&d.ID, &d.OwnerID, &d.Title, &d.AccessScope, &d.Status, &tags, &d.StorageURL,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(tags, &d.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	const q = `
		UPDATE documents
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// DeleteDocument removes the record; chunks go with it via the cascading
// foreign key. Deleting an unknown document is a no-op.
func (c *DatabaseClient) DeleteDocument(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}

// Chat messages

func (c *DatabaseClient) AddChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg == nil {
		return errors.New("nil message")
	}
	citations, err := json.Marshal(msg.Citations)
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}
	const q = `
		INSERT INTO chat_messages (id, user_id, role, content, citations, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`
	_, err = c.db.ExecContext(ctx, q, msg.ID, msg.UserID, msg.Role, msg.Content, citations, msg.CreatedAt)
	return err
}

// ListChatMessagesByUser returns the user's most recent messages in
// chronological order, oldest first.
func (c *DatabaseClient) ListChatMessagesByUser(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, user_id, role, content, citations, created_at
		FROM (
			SELECT id, user_id, role, content, citations, created_at
			FROM chat_messages
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var (
			m         models.ChatMessage
			citations []byte
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &citations, &m.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(citations, &m.Citations); err != nil {
			return nil, fmt.Errorf("unmarshal citations: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

var _ core.DbClient = (*DatabaseClient)(nil)
