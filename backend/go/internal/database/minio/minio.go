package minio

import (
	"context"
	"fmt"
	"sync"

	"DocRAG/backend/go/internal/config"
	"DocRAG/backend/go/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	client  *minio.Client
	once    sync.Once
	initErr error
)

// GetClient 使用单例模式初始化 MinIO 客户端，并确保上传文档使用的存储桶存在。
func GetClient(ctx context.Context, cfg *config.MinIOConfig) (*minio.Client, error) {
	once.Do(func() {
		c, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""), // 静态凭证。
			Secure: cfg.Secure,
		})
		if err != nil {
			initErr = fmt.Errorf("无法创建 MinIO 客户端: %w", err)
			return
		}

		if err := ensureBucket(ctx, c, cfg.Bucket); err != nil {
			initErr = err
			return
		}

		logger.New("minio", "", "").WithPayload(map[string]interface{}{"endpoint": cfg.Endpoint, "bucket": cfg.Bucket}).
			Info("Connected to MinIO")
		client = c
	})

	return client, initErr
}

func ensureBucket(ctx context.Context, c *minio.Client, bucket string) error {
	if bucket == "" {
		return fmt.Errorf("MinIO 存储桶名称为空")
	}
	exists, err := c.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("MinIO 初始化健康检查失败: %w", err)
	}
	if exists {
		return nil
	}
	if err := c.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", bucket, err)
	}
	return nil
}

// HealthCheck 检查 MinIO 连接的健康状况。
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("MinIO 客户端未初始化")
	}
	if _, err := client.ListBuckets(ctx); err != nil {
		return fmt.Errorf("MinIO 健康检查失败: %w", err)
	}
	return nil
}
