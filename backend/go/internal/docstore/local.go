package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore 把文档写到本地上传目录，路径为 <dir>/<文件名>。
type LocalStore struct {
	dir string
}

// NewLocalStore 创建本地存储，目录不存在时自动创建。
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// PathFor 返回文件名对应的确定性存储路径。
func (s *LocalStore) PathFor(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *LocalStore) Save(ctx context.Context, filename string, data []byte) (*Document, error) {
	doc, err := describe(filename, data, s.PathFor)
	if err != nil {
		return nil, err
	}
	// 先写临时文件再改名，同名覆盖时读者不会看到半截内容
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write %s: %w", doc.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("write %s: %w", doc.Name, err)
	}
	if err := os.Rename(tmp.Name(), doc.Path); err != nil {
		return nil, fmt.Errorf("save %s: %w", doc.Name, err)
	}
	return doc, nil
}

func (s *LocalStore) Exists(ctx context.Context, path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *LocalStore) Open(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
	}
	return data, err
}
