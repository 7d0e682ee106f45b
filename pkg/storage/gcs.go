package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"

	"github.com/ketr501215/Ray-Cloud-Web/config"
)

// GCSStore 基于 Google Cloud Storage 的对象存储
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	prefix  string
	baseURL string
}

// NewGCSStore 创建 GCS 客户端（凭证取自默认应用凭证）
func NewGCSStore(ctx context.Context, cfg *config.StorageConfig) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("创建 GCS 客户端失败: %w", err)
	}
	return &GCSStore{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		baseURL: cfg.PublicBaseURL,
	}, nil
}

func (s *GCSStore) object(name string) *gcs.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.prefix + name)
}

// Put 上传对象
func (s *GCSStore) Put(ctx context.Context, name string, r io.Reader, contentType string) (*Object, error) {
	w := s.object(name).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("写入 gs://%s/%s 失败: %w", s.bucket, s.prefix+name, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("提交 gs://%s/%s 失败: %w", s.bucket, s.prefix+name, err)
	}

	return &Object{
		Name:        name,
		URL:         joinURL(joinURL(s.baseURL, s.bucket), s.prefix+name),
		ContentType: contentType,
		Size:        n,
	}, nil
}

// Open 读取对象
func (s *GCSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := s.object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// Delete 删除对象
func (s *GCSStore) Delete(ctx context.Context, name string) error {
	err := s.object(name).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrNotFound
	}
	return err
}

// Close 关闭底层客户端
func (s *GCSStore) Close() error {
	return s.client.Close()
}
