package testutil

import (
	"path/filepath"
	"testing"

	"github.com/yoj3289/WeNectProject/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB 返回迁移完成的 sqlite 数据库, 测试结束后自动关闭
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig("silent"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// sqlite 单写者, 所有语句走同一连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
