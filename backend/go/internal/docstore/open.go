package docstore

import (
	"context"
	"fmt"

	"DocRAG/backend/go/internal/config"
	"DocRAG/backend/go/internal/database/minio"
)

// Open 按配置创建文档存储。
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.UploadDir)
	case "minio":
		client, err := minio.GetClient(ctx, &cfg.MinIO)
		if err != nil {
			return nil, err
		}
		return NewMinIOStore(client, cfg.MinIO.Bucket, cfg.UploadDir), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
