package drive

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/binder/pkg/repository"
	"github.com/JaimeStill/binder/pkg/storage"
)

type repo struct {
	db      *sql.DB
	storage storage.System
	logger  *slog.Logger
}

// New creates a System that keeps the file and container catalog in
// PostgreSQL and file bytes in blob storage.
func New(db *sql.DB, store storage.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		storage: store,
		logger:  logger.With("system", "drive"),
	}
}

func (r *repo) GetFile(ctx context.Context, id string) (*File, error) {
	fid, err := parseID(id, ErrNotFound)
	if err != nil || fid == nil {
		return nil, ErrNotFound
	}

	q := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	f, err := repository.QueryOne(ctx, r.db, q, []any{fid}, scanFile)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

func (r *repo) Download(ctx context.Context, id string) ([]byte, error) {
	f, err := r.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}

	rc, err := r.storage.Download(ctx, f.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func (r *repo) ListFiles(ctx context.Context, containerID string) ([]File, error) {
	cid, err := r.requireContainer(ctx, containerID)
	if err != nil {
		return nil, err
	}

	q := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE container_id IS NOT DISTINCT FROM $1::uuid AND NOT trashed
		ORDER BY name, created_at`

	files, err := repository.QueryMany(ctx, r.db, q, []any{cid}, scanFile)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

func (r *repo) GetContainer(ctx context.Context, id string) (*Container, error) {
	cid, err := parseID(id, ErrContainerNotFound)
	if err != nil {
		return nil, err
	}
	if cid == nil {
		root := Root
		return &root, nil
	}

	q := `SELECT ` + containerColumns + ` FROM containers WHERE id = $1 AND NOT trashed`
	c, err := repository.QueryOne(ctx, r.db, q, []any{cid}, scanContainer)
	if err != nil {
		return nil, repository.MapError(err, ErrContainerNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) ListSubcontainers(ctx context.Context, containerID string) ([]Container, error) {
	return r.FindContainers(ctx, containerID, "")
}

func (r *repo) FindContainers(ctx context.Context, parentID, name string) ([]Container, error) {
	pid, err := r.requireContainer(ctx, parentID)
	if err != nil {
		return nil, err
	}

	q := `
		SELECT ` + containerColumns + `
		FROM containers
		WHERE parent_id IS NOT DISTINCT FROM $1::uuid
			AND NOT trashed
			AND ($2 = '' OR name = $2)
		ORDER BY name, created_at`

	containers, err := repository.QueryMany(ctx, r.db, q, []any{pid, name}, scanContainer)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	return containers, nil
}

func (r *repo) CreateContainer(ctx context.Context, parentID, name string) (*Container, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty container name", ErrInvalidName)
	}

	pid, err := r.requireContainer(ctx, parentID)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO containers(id, parent_id, name)
		VALUES ($1, $2, $3)
		RETURNING ` + containerColumns

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Container, error) {
		return repository.QueryOne(ctx, tx, q, []any{uuid.New(), pid, name}, scanContainer)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrContainerNotFound, ErrDuplicate)
	}

	r.logger.Info("container created", "id", c.ID, "name", c.Name, "parent_id", c.ParentID)
	return &c, nil
}

func (r *repo) CreateFile(ctx context.Context, containerID, name, mimeType string, data []byte) (*File, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty file name", ErrInvalidName)
	}

	cid, err := r.requireContainer(ctx, containerID)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := buildStorageKey(id.String(), name)

	if err := r.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
		return nil, fmt.Errorf("upload file blob: %w", err)
	}

	q := `
		INSERT INTO files(id, container_id, name, mime_type, size_bytes, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + fileColumns

	args := []any{id, cid, name, mimeType, int64(len(data)), key}

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (File, error) {
		return repository.QueryOne(ctx, tx, q, args, scanFile)
	})
	if err != nil {
		if delErr := r.storage.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrContainerNotFound, ErrDuplicate)
	}

	r.logger.Debug("file created", "id", f.ID, "name", f.Name, "container_id", f.ContainerID)
	return &f, nil
}

func (r *repo) CopyFile(ctx context.Context, id, containerID, name string) (*File, error) {
	src, err := r.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := r.Download(ctx, id)
	if err != nil {
		return nil, err
	}

	return r.CreateFile(ctx, containerID, name, src.MIMEType, data)
}

func (r *repo) TrashFile(ctx context.Context, id string) error {
	fid, err := parseID(id, ErrNotFound)
	if err != nil || fid == nil {
		return ErrNotFound
	}

	err = repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE files SET trashed = true, updated_at = now() WHERE id = $1",
		fid,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("file trashed", "id", id)
	return nil
}

func (r *repo) DeleteFile(ctx context.Context, id string) error {
	f, err := r.GetFile(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM files WHERE id = $1", f.ID)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, f.StorageKey); delErr != nil {
		r.logger.Warn("blob delete failed after catalog delete", "key", f.StorageKey, "error", delErr)
	}

	r.logger.Debug("file deleted", "id", id, "name", f.Name)
	return nil
}

// requireContainer resolves id to a query argument, confirming a non-root
// container exists and is not trashed.
func (r *repo) requireContainer(ctx context.Context, id string) (any, error) {
	cid, err := parseID(id, ErrContainerNotFound)
	if err != nil {
		return nil, err
	}
	if cid == nil {
		return nil, nil
	}
	if _, err := r.GetContainer(ctx, id); err != nil {
		return nil, err
	}
	return cid, nil
}
