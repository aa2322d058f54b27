package docstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
)

// MinIOStore 把文档保存为对象，对象键为 <prefix>/<文件名>。
type MinIOStore struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinIOStore(client *minio.Client, bucket, prefix string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *MinIOStore) PathFor(name string) string {
	return path.Join(s.prefix, name)
}

func (s *MinIOStore) Save(ctx context.Context, filename string, data []byte) (*Document, error) {
	doc, err := describe(filename, data, s.PathFor)
	if err != nil {
		return nil, err
	}
	_, err = s.client.PutObject(ctx, s.bucket, doc.Path, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: doc.MIMEType})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", doc.Path, err)
	}
	return doc, nil
}

func (s *MinIOStore) Exists(ctx context.Context, key string) bool {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	return err == nil
}

func (s *MinIOStore) Open(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, objectError("get", key, err)
	}
	defer obj.Close()
	// GetObject 是惰性的，对象不存在要到第一次读取时才报错
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, objectError("read", key, err)
	}
	return data, nil
}

func objectError(op, key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, key)
	}
	return fmt.Errorf("%s object %s: %w", op, key, err)
}
