package core

import (
	"context"
	"io"

	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

// DbClient defines all persistence operations the handlers and orchestrator
// need. It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status string) error
	DeleteDocument(ctx context.Context, id string) error

	AddChatMessage(ctx context.Context, msg *models.ChatMessage) error
	ListChatMessagesByUser(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage; uploaded
// raw document text is archived there alongside the database record.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)

	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
