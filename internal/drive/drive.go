// Package drive models the file storage service binder works against:
// containers (folders) that hold files, each file a catalog entry whose bytes
// live in blob storage. The PostgreSQL-backed implementation is used by the
// CLI; Memory serves tests and dry runs.
package drive

import (
	"context"
	"time"
)

// MIMEPDF is the page-bearing output format binder assembles.
const MIMEPDF = "application/pdf"

// File describes a stored file. ID is service-assigned and immutable;
// Name is mutable, not unique, and only used for matching and display.
// An empty ContainerID places the file at the root.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MIMEType    string    `json:"mime_type"`
	ContainerID string    `json:"container_id,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	StorageKey  string    `json:"-"`
	Trashed     bool      `json:"trashed,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Container is a folder-like grouping of files. An empty ParentID denotes a
// top-level container; the root itself has an empty ID.
type Container struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id,omitempty"`
	Name      string    `json:"name"`
	Trashed   bool      `json:"trashed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Root is the implicit container addressed by an empty id.
var Root = Container{Name: "root"}

// System is the contract binder needs from the storage service.
// Listing operations exclude trashed entries and order results by name.
type System interface {
	GetFile(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) ([]byte, error)
	ListFiles(ctx context.Context, containerID string) ([]File, error)

	GetContainer(ctx context.Context, id string) (*Container, error)
	ListSubcontainers(ctx context.Context, containerID string) ([]Container, error)
	FindContainers(ctx context.Context, parentID, name string) ([]Container, error)
	CreateContainer(ctx context.Context, parentID, name string) (*Container, error)

	CreateFile(ctx context.Context, containerID, name, mimeType string, data []byte) (*File, error)
	CopyFile(ctx context.Context, id, containerID, name string) (*File, error)
	// TrashFile hides a file from listings while keeping it retrievable by id.
	TrashFile(ctx context.Context, id string) error
	// DeleteFile removes a file and its bytes permanently.
	DeleteFile(ctx context.Context, id string) error
}
