package remote

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"sync"

	"github.com/fieldops-next/internal/models"
)

// MemoryStore 内存文档存储。用于测试与离线开发，行为与远端契约一致，
// 可注入失败以模拟远端不可达。
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string]map[string]models.Doc
	failErr error
}

// NewMemoryStore 创建内存文档存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]models.Doc),
	}
}

// SetFail 注入失败：之后所有操作返回该错误，传 nil 恢复
func (s *MemoryStore) SetFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Get 读取集合全部文档
func (s *MemoryStore) Get(_ context.Context, collection string) ([]models.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	docs := make([]models.Doc, 0, len(s.data[collection]))
	ids := make([]string, 0, len(s.data[collection]))
	for id := range s.data[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		docs = append(docs, cloneDoc(s.data[collection][id]))
	}
	return docs, nil
}

// GetWhere 单字段等值过滤
func (s *MemoryStore) GetWhere(ctx context.Context, collection, field string, op Op, value interface{}) ([]models.Doc, error) {
	if op != OpEqual {
		return nil, ErrUnsupportedOp
	}
	docs, err := s.Get(ctx, collection)
	if err != nil {
		return nil, err
	}
	want := normalizeValue(value)
	matched := make([]models.Doc, 0)
	for _, doc := range docs {
		if reflect.DeepEqual(normalizeValue(doc[field]), want) {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

// Set 整文档写入（last-write-wins）
func (s *MemoryStore) Set(_ context.Context, collection, id string, doc models.Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]models.Doc)
	}
	s.data[collection][id] = cloneDoc(doc)
	return nil
}

// Update 字段级补丁写入
func (s *MemoryStore) Update(_ context.Context, collection, id string, patch models.Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]models.Doc)
	}
	existing := s.data[collection][id]
	if existing == nil {
		existing = make(models.Doc)
	}
	for key, val := range cloneDoc(patch) {
		existing[key] = val
	}
	s.data[collection][id] = existing
	return nil
}

func cloneDoc(doc models.Doc) models.Doc {
	if doc == nil {
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	var out models.Doc
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// normalizeValue 经 JSON 往返归一化数值类型，保证 int/float 等值可比
func normalizeValue(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
