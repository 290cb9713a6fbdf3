package models

import (
	"time"
)

// Document access scopes.
const (
	ScopeAll      = "all"      // visible to every authenticated user
	ScopeAdmin    = "admin"    // visible to admins only
	ScopeSpecific = "specific" // visible to the owning user (and admins)
)

// Document processing statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents an uploaded company document. Content is the raw
// extracted text; binary originals live in object storage at StorageURL.
type Document struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"-"`
	AccessScope string    `db:"access_scope" json:"access_scope"` // all | admin | specific
	Status      string    `db:"status" json:"status"`             // pending | processing | processed | failed
	Tags        []string  `db:"tags" json:"tags"`
	StorageURL  string    `db:"storage_url" json:"storage_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentChunk is one overlapping slice of a document's text together with
// its embedding vector. Index orders chunks within their document.
type DocumentChunk struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	Index      int       `db:"chunk_index" json:"chunk_index"`
	StartToken int       `db:"start_token" json:"start_token"`
	EndToken   int       `db:"end_token" json:"end_token"`
	Text       string    `db:"text" json:"text"`
	Embedding  []float32 `db:"embedding" json:"-"` // pgvector column
	Page       *int      `db:"page" json:"page,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Citation points an assistant answer back at the document chunk it drew from.
// Citations are owned by their ChatMessage and stored inline with it.
type Citation struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Snippet    string `json:"snippet"`
	Page       *int   `json:"page,omitempty"`
}

// ChatMessage is an individual turn in a user's conversation.
type ChatMessage struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Role      string     `db:"role" json:"role"` // "user" or "assistant"
	Content   string     `db:"content" json:"content"`
	Citations []Citation `db:"citations" json:"citations,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Viewer identifies the requester for access-scope filtering. Identity comes
// from the auth middleware; this package performs no authentication itself.
type Viewer struct {
	UserID  string
	IsAdmin bool
}

// CanSee reports whether the viewer may read chunks of a document with the
// given access scope and owner.
func (v Viewer) CanSee(accessScope, ownerID string) bool {
	switch accessScope {
	case ScopeAll:
		return true
	case ScopeAdmin:
		return v.IsAdmin
	case ScopeSpecific:
		return v.IsAdmin || v.UserID == ownerID
	default:
		return false
	}
}
