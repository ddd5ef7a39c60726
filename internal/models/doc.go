package models

import "encoding/json"

// Doc 远端文档的无模式表示
type Doc = map[string]interface{}

// ToDoc 将实体编码为远端文档
func ToDoc(v interface{}) (Doc, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Doc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// FromDoc 将远端文档解码为实体
func FromDoc(doc Doc, dest interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// DecodeList 将文档列表解码为实体切片
func DecodeList[T any](docs []Doc) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := FromDoc(doc, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
