package drive

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory System. It is safe for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	files      map[string]*memoryFile
	containers map[string]*Container
	now        func() time.Time
	last       time.Time
}

type memoryFile struct {
	file File
	data []byte
}

// NewMemory creates an empty in-memory drive.
func NewMemory() *Memory {
	return &Memory{
		files:      make(map[string]*memoryFile),
		containers: make(map[string]*Container),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) GetFile(ctx context.Context, id string) (*File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mf, ok := m.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	f := mf.file
	return &f, nil
}

func (m *Memory) Download(ctx context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mf, ok := m.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(mf.data), nil
}

func (m *Memory) ListFiles(ctx context.Context, containerID string) ([]File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.requireContainer(containerID); err != nil {
		return nil, err
	}

	files := make([]File, 0)
	for _, mf := range m.files {
		if mf.file.ContainerID == containerID && !mf.file.Trashed {
			files = append(files, mf.file)
		}
	}

	slices.SortFunc(files, func(a, b File) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return files, nil
}

func (m *Memory) GetContainer(ctx context.Context, id string) (*Container, error) {
	if id == "" {
		root := Root
		return &root, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.containers[id]
	if !ok {
		return nil, ErrContainerNotFound
	}
	out := *c
	return &out, nil
}

func (m *Memory) ListSubcontainers(ctx context.Context, containerID string) ([]Container, error) {
	return m.FindContainers(ctx, containerID, "")
}

// FindContainers returns the children of parentID, restricted to those named
// exactly name when name is non-empty.
func (m *Memory) FindContainers(ctx context.Context, parentID, name string) ([]Container, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.requireContainer(parentID); err != nil {
		return nil, err
	}

	out := make([]Container, 0)
	for _, c := range m.containers {
		if c.ParentID != parentID || c.Trashed {
			continue
		}
		if name != "" && c.Name != name {
			continue
		}
		out = append(out, *c)
	}

	slices.SortFunc(out, func(a, b Container) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (m *Memory) CreateContainer(ctx context.Context, parentID, name string) (*Container, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty container name", ErrInvalidName)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireContainer(parentID); err != nil {
		return nil, err
	}

	c := &Container{
		ID:        uuid.NewString(),
		ParentID:  parentID,
		Name:      name,
		CreatedAt: m.tick(),
	}
	m.containers[c.ID] = c

	out := *c
	return &out, nil
}

func (m *Memory) CreateFile(ctx context.Context, containerID, name, mimeType string, data []byte) (*File, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty file name", ErrInvalidName)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireContainer(containerID); err != nil {
		return nil, err
	}

	now := m.tick()
	id := uuid.NewString()
	f := File{
		ID:          id,
		Name:        name,
		MIMEType:    mimeType,
		ContainerID: containerID,
		SizeBytes:   int64(len(data)),
		StorageKey:  buildStorageKey(id, name),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.files[id] = &memoryFile{file: f, data: slices.Clone(data)}

	return &f, nil
}

func (m *Memory) CopyFile(ctx context.Context, id, containerID, name string) (*File, error) {
	src, err := m.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := m.Download(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.CreateFile(ctx, containerID, name, src.MIMEType, data)
}

func (m *Memory) TrashFile(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mf, ok := m.files[id]
	if !ok {
		return ErrNotFound
	}
	mf.file.Trashed = true
	mf.file.UpdatedAt = m.tick()
	return nil
}

func (m *Memory) DeleteFile(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return ErrNotFound
	}
	delete(m.files, id)
	return nil
}

// requireContainer must be called with m.mu held.
func (m *Memory) requireContainer(id string) error {
	if id == "" {
		return nil
	}
	c, ok := m.containers[id]
	if !ok || c.Trashed {
		return ErrContainerNotFound
	}
	return nil
}

// tick returns a strictly increasing timestamp so creation order is stable
// even when the clock does not advance between calls. Must be called with
// m.mu held for writing.
func (m *Memory) tick() time.Time {
	now := m.now()
	if !now.After(m.last) {
		now = m.last.Add(time.Nanosecond)
	}
	m.last = now
	return now
}
