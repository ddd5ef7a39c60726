package replica

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Snapshot 本地快照行：每个集合一行，值为序列化的实体列表
type Snapshot struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Value     []byte    `gorm:"type:blob"`
	UpdatedAt time.Time `gorm:"index"`
}

// TableName 指定表名
func (Snapshot) TableName() string {
	return "replica_snapshots"
}

// Store 本地副本存储契约：按集合名读写字节快照，进程重启后仍可用
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// GormStore GORM 实现
type GormStore struct {
	db *gorm.DB
}

// Open 打开本地副本数据库并完成迁移
func Open(driver, dsn string) (*GormStore, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported replica driver: %s", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewStore(db)
}

// NewStore 基于已有连接创建本地副本存储
func NewStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// Get 读取快照，不存在时返回 nil
func (s *GormStore) Get(key string) ([]byte, error) {
	var row Snapshot
	if err := s.db.First(&row, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.Value, nil
}

// Set 写入快照（覆盖）
func (s *GormStore) Set(key string, value []byte) error {
	row := Snapshot{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.Save(&row).Error
}

// GetList 读取并反序列化实体列表，空快照返回空切片
func GetList[T any](store Store, key string) ([]T, error) {
	raw, err := store.Get(key)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []T{}, nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList 序列化并写入实体列表
func SetList[T any](store Store, key string, list []T) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return store.Set(key, raw)
}
