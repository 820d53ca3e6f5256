package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"scms_backend/internal/model"
)

// FileSnapshotStore 把全部投诉保存为一个 JSON 文件
type FileSnapshotStore struct {
	Path string
	mu   sync.Mutex
}

func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{Path: path}
}

// Save 先写临时文件再重命名，避免写到一半时留下损坏的文件
func (s *FileSnapshotStore) Save(ctx context.Context, complaints []model.Complaint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if complaints == nil {
		complaints = []model.Complaint{}
	}
	data, err := json.MarshalIndent(complaints, "", "  ")
	if err != nil {
		return fmt.Errorf("encode complaints: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".complaints-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// Load 文件不存在时返回空集合
func (s *FileSnapshotStore) Load(ctx context.Context) ([]model.Complaint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	data, err := os.ReadFile(s.Path)
	s.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var complaints []model.Complaint
	if err := json.Unmarshal(data, &complaints); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return complaints, nil
}
