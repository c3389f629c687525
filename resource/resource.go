package resource

import (
	"context"
	"errors"
)

// ErrNotFound marks a remote lookup that found nothing. API implementations
// wrap their provider specific "not found" signal with it.
var ErrNotFound = errors.New("resource not found")

// Deleted is the confirmation token returned by delete operations.
const Deleted = "deleted"

// IsNotFound reports whether err signals a missing remote resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// File is an uploaded file.
type File struct {
	ID       string
	Filename string
	Bytes    int64
}

// VectorStore is a remote vector index.
type VectorStore struct {
	ID   string
	Name string
}

// Attachment links a file to a vector store. Its ID equals the file ID.
type Attachment struct {
	ID            string
	VectorStoreID string
	Status        string
}

// FileAPI manages uploaded files.
type FileAPI interface {
	ListFiles(ctx context.Context) ([]File, error)
	GetFile(ctx context.Context, id string) (File, error)
	UploadFile(ctx context.Context, path string) (File, error)
	DeleteFile(ctx context.Context, id string) error
}

// VectorStoreAPI manages vector stores.
type VectorStoreAPI interface {
	ListVectorStores(ctx context.Context) ([]VectorStore, error)
	GetVectorStore(ctx context.Context, id string) (VectorStore, error)
	CreateVectorStore(ctx context.Context, name string) (VectorStore, error)
	DeleteVectorStore(ctx context.Context, id string) error
}

// AttachmentAPI manages vector store file attachments.
type AttachmentAPI interface {
	ListAttachments(ctx context.Context, storeID string) ([]Attachment, error)
	CreateAttachment(ctx context.Context, storeID, fileID string) (Attachment, error)
	DeleteAttachment(ctx context.Context, storeID, fileID string) error
}

// API is the full remote resource surface used by the Reconciler.
type API interface {
	FileAPI
	VectorStoreAPI
	AttachmentAPI
}
