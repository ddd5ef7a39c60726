package remote

import (
	"context"
	"errors"

	"github.com/fieldops-next/internal/models"
)

// Op 查询比较符。远端契约目前只支持单字段等值过滤。
type Op string

// OpEqual 等值比较
const OpEqual Op = "=="

// ErrUnavailable 远端存储不可达。调用方捕获后降级为本地操作。
var ErrUnavailable = errors.New("远端存储不可用")

// ErrUnsupportedOp 不支持的查询比较符
var ErrUnsupportedOp = errors.New("不支持的查询比较符")

// Store 远端文档存储契约。文档为无模式 map，按集合名组织，
// Set/Update 为文档级 last-write-wins，可用性不做保证。
type Store interface {
	Get(ctx context.Context, collection string) ([]models.Doc, error)
	GetWhere(ctx context.Context, collection, field string, op Op, value interface{}) ([]models.Doc, error)
	Set(ctx context.Context, collection, id string, doc models.Doc) error
	Update(ctx context.Context, collection, id string, patch models.Doc) error
}
