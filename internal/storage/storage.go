package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/yoj3289/WeNectProject/internal/config"
)

// FileStore 项目图片与文档的存储
type FileStore interface {
	// Save 写入内容并返回可访问的路径
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
	// Delete 删除 Save 返回的路径, 不存在时不报错
	Delete(ctx context.Context, path string) error
}

// NewKey 生成对象键: projects/<projectId>/<ulid><ext>
func NewKey(projectId int64, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("projects", fmt.Sprintf("%d", projectId), ulid.Make().String()+ext)
}

// New 按配置选择存储实现
func New(ctx context.Context, cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.LocalDir, cfg.BaseURL)
	case "s3":
		return NewS3Store(ctx, cfg.Bucket, cfg.Region)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
