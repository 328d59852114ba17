package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"internApply/internal/config"
)

// Client 封装 MinIO 客户端，提供简历上传、Bucket 创建与清理所需的接口。
type Client struct {
	internalClient *minio.Client
	publicClient   *minio.Client
	bucketName     string
	region         string
}

// ObjectMeta 描述 Bucket 中对象的关键信息。
type ObjectMeta struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// NewClient 根据配置初始化 MinIO 客户端。
// 这里不检查 Bucket 是否存在：缺失的 Bucket 在首次上传时按需创建。
func NewClient(cfg config.MinIOConfig) (*Client, error) {
	creds := credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")

	internalClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init internal minio client: %w", err)
	}

	publicClient := internalClient
	if strings.TrimSpace(cfg.PublicEndpoint) != "" {
		parsedPublicEndpoint, err := url.Parse(cfg.PublicEndpoint)
		if err != nil {
			return nil, fmt.Errorf("parse minio public endpoint: %w", err)
		}
		publicHost := parsedPublicEndpoint.Host
		if publicHost == "" {
			return nil, fmt.Errorf("invalid minio public endpoint, host missing")
		}
		publicClient, err = minio.New(publicHost, &minio.Options{
			Creds:  creds,
			Secure: parsedPublicEndpoint.Scheme == "https",
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("init public minio client: %w", err)
		}
	}

	return &Client{
		internalClient: internalClient,
		publicClient:   publicClient,
		bucketName:     cfg.Bucket,
		region:         cfg.Region,
	}, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string { return c.bucketName }

// UploadFile 将对象上传到 Bucket，已存在的同名对象不会被覆盖。
// Bucket 不存在时返回的错误满足 errors.Is(err, ErrBucketNotFound)，
// 对象已存在时满足 errors.Is(err, ErrObjectExists)。
func (c *Client) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error) {
	info, err := c.internalClient.PutObject(ctx, c.bucketName, objectName, reader, size, createOnlyOptions(contentType))
	if err != nil {
		switch {
		case IsNoSuchBucket(err):
			return nil, fmt.Errorf("put object %q: %w: %w", objectName, ErrBucketNotFound, err)
		case isPreconditionFailed(err):
			return nil, fmt.Errorf("put object %q: %w: %w", objectName, ErrObjectExists, err)
		}
		return nil, fmt.Errorf("put object %q: %w", objectName, err)
	}
	return &info, nil
}

// createOnlyOptions 带上 If-None-Match: *，目标对象已存在时服务端拒绝写入。
func createOnlyOptions(contentType string) minio.PutObjectOptions {
	opts := minio.PutObjectOptions{ContentType: contentType}
	opts.SetMatchETagExcept("*")
	return opts
}

// MakeBucket 创建配置中的 Bucket；public 为 true 时附加匿名只读策略。
// Bucket 已归属当前账号时视为成功。
func (c *Client) MakeBucket(ctx context.Context, public bool) error {
	err := c.internalClient.MakeBucket(ctx, c.bucketName, minio.MakeBucketOptions{Region: c.region})
	if err != nil && !isBucketAlreadyOwned(err) {
		return fmt.Errorf("make bucket %q: %w", c.bucketName, err)
	}
	if !public {
		return nil
	}
	if err := c.internalClient.SetBucketPolicy(ctx, c.bucketName, publicReadPolicy(c.bucketName)); err != nil {
		return fmt.Errorf("set public policy on %q: %w", c.bucketName, err)
	}
	return nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

// StatObject 返回对象元数据；对象不存在时 exists 为 false 且 err 为 nil。
func (c *Client) StatObject(ctx context.Context, objectKey string) (ObjectMeta, bool, error) {
	info, err := c.internalClient.StatObject(ctx, c.bucketName, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if IsNoSuchKey(err) {
			return ObjectMeta{}, false, nil
		}
		return ObjectMeta{}, false, fmt.Errorf("stat object %q: %w", objectKey, err)
	}
	return ObjectMeta{Key: info.Key, Size: info.Size, LastModified: info.LastModified}, true, nil
}

// GeneratePresignedURL 生成对象的限时下载链接。
func (c *Client) GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error) {
	presignedURL, err := c.publicClient.PresignedGetObject(ctx, c.bucketName, objectKey, duration, nil)
	if err != nil {
		return "", fmt.Errorf("generate presigned url for %q: %w", objectKey, err)
	}
	return presignedURL.String(), nil
}

// ListObjects 列出指定前缀下的对象元数据，limit<=0 时不限制数量。
func (c *Client) ListObjects(ctx context.Context, prefix string, limit int) ([]ObjectMeta, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objCh := c.internalClient.ListObjects(ctx, c.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	result := make([]ObjectMeta, 0, 64)
	for object := range objCh {
		if object.Err != nil {
			if IsNoSuchBucket(object.Err) {
				return nil, nil
			}
			return nil, fmt.Errorf("list objects under %q: %w", prefix, object.Err)
		}
		result = append(result, ObjectMeta{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// DeleteObject 删除指定对象。
// 若对象不存在会被视为成功（幂等）。
func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil
	}
	if err := c.internalClient.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		if IsNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}
