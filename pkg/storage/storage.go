// Package storage 上传文件的对象存储
//
// 生产环境使用 Google Cloud Storage；本地开发可切换为磁盘目录。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("存储对象不存在")

// Object 已写入存储的对象
type Object struct {
	Name        string
	URL         string
	ContentType string
	Size        int64
}

// Store 对象存储接口
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string) (*Object, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// ObjectName 生成唯一对象名：<毫秒时间戳>-<随机串>-<规范化文件名>
func ObjectName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := slug.Make(strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)))
	if base == "" {
		base = "file"
	}
	if ext != "" {
		if e := slug.Make(strings.TrimPrefix(ext, ".")); e != "" {
			ext = "." + e
		} else {
			ext = ""
		}
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s-%s%s", now.UnixMilli(), random, base, ext)
}

func joinURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(name, "/")
}
