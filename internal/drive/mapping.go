package drive

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JaimeStill/binder/pkg/repository"
)

const fileColumns = `id, container_id, name, mime_type, size_bytes, storage_key, trashed, created_at, updated_at`

const containerColumns = `id, parent_id, name, trashed, created_at`

func scanFile(s repository.Scanner) (File, error) {
	var (
		f           File
		id          uuid.UUID
		containerID uuid.NullUUID
	)
	err := s.Scan(
		&id,
		&containerID,
		&f.Name,
		&f.MIMEType,
		&f.SizeBytes,
		&f.StorageKey,
		&f.Trashed,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return f, err
	}

	f.ID = id.String()
	f.ContainerID = nullableID(containerID)
	return f, nil
}

func scanContainer(s repository.Scanner) (Container, error) {
	var (
		c        Container
		id       uuid.UUID
		parentID uuid.NullUUID
	)
	err := s.Scan(
		&id,
		&parentID,
		&c.Name,
		&c.Trashed,
		&c.CreatedAt,
	)
	if err != nil {
		return c, err
	}

	c.ID = id.String()
	c.ParentID = nullableID(parentID)
	return c, nil
}

func nullableID(id uuid.NullUUID) string {
	if !id.Valid {
		return ""
	}
	return id.UUID.String()
}

// parseID rejects identifiers that cannot exist in the catalog before they
// reach PostgreSQL. The empty id is the root and passes through.
func parseID(id string, notFound error) (any, error) {
	if id == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, notFound
	}
	return parsed, nil
}

func buildStorageKey(id, name string) string {
	return fmt.Sprintf("files/%s/%s", id, sanitizeFilename(name))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == string(filepath.Separator) {
		name = "file"
	}
	return url.PathEscape(name)
}

