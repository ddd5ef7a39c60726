package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldops-next/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore MongoDB 实现的远端文档存储
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore 连接 MongoDB 并创建远端存储
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &MongoStore{db: client.Database(database)}, nil
}

// EnsureIndexes 创建台账自然键唯一索引，把幂等检查的读写竞态变成硬拒绝。
// ref_id 必须参与键：收款/冲正类分录按记录键区分，同一订单合法地出现多条。
func (s *MongoStore) EnsureIndexes(ctx context.Context, ledgerCollection string) error {
	_, err := s.db.Collection(ledgerCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "type", Value: 1},
			{Key: "order_id", Value: 1},
			{Key: "return_id", Value: 1},
			{Key: "ref_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get 读取集合全部文档
func (s *MongoStore) Get(ctx context.Context, collection string) ([]models.Doc, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer cursor.Close(ctx)
	return decodeCursor(ctx, cursor)
}

// GetWhere 单字段等值过滤
func (s *MongoStore) GetWhere(ctx context.Context, collection, field string, op Op, value interface{}) ([]models.Doc, error) {
	if op != OpEqual {
		return nil, ErrUnsupportedOp
	}
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{field: value})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer cursor.Close(ctx)
	return decodeCursor(ctx, cursor)
}

// Set 整文档写入（upsert，last-write-wins）
func (s *MongoStore) Set(ctx context.Context, collection, id string, doc models.Doc) error {
	payload := bson.M{}
	for key, val := range doc {
		payload[key] = val
	}
	payload["_id"] = id
	_, err := s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": id}, payload, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Update 字段级补丁写入
func (s *MongoStore) Update(ctx context.Context, collection, id string, patch models.Doc) error {
	fields := bson.M{}
	for key, val := range patch {
		fields[key] = val
	}
	_, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id}, bson.M{"$set": fields}, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func decodeCursor(ctx context.Context, cursor *mongo.Cursor) ([]models.Doc, error) {
	docs := make([]models.Doc, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		docs = append(docs, normalizeDoc(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return docs, nil
}

// normalizeDoc 在存储边界归一化文档：_id → id，BSON 时间类型 → epoch 毫秒
func normalizeDoc(raw bson.M) models.Doc {
	doc := make(models.Doc, len(raw))
	for key, val := range raw {
		if key == "_id" {
			if _, exists := raw["id"]; !exists {
				doc["id"] = fmt.Sprintf("%v", val)
			}
			continue
		}
		doc[key] = normalizeBSONValue(val)
	}
	return doc
}

func normalizeBSONValue(val interface{}) interface{} {
	switch v := val.(type) {
	case primitive.DateTime:
		return int64(v)
	case primitive.Timestamp:
		return int64(v.T) * 1000
	case time.Time:
		return v.UnixMilli()
	case bson.M:
		out := make(models.Doc, len(v))
		for key, inner := range v {
			out[key] = normalizeBSONValue(inner)
		}
		return out
	case bson.A:
		out := make([]interface{}, 0, len(v))
		for _, inner := range v {
			out = append(out, normalizeBSONValue(inner))
		}
		return out
	default:
		return val
	}
}
