package kv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// MarshalJSON 以插入顺序输出 JSON 对象。标量值按 JSON 原样编码；
// 整数值的 float64 会补上小数部分，保证重新加载后仍是浮点数。
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range s.pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := encodeValue(p.Value)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", p.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeValue(v any) ([]byte, error) {
	switch val := v.(type) {
	case float64:
		return encodeFloat(val)
	case float32:
		return encodeFloat(float64(val))
	default:
		return json.Marshal(v)
	}
}

func encodeFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("unsupported float value %v", f)
	}
	out := strconv.AppendFloat(nil, f, 'g', -1, 64)
	if !bytes.ContainsAny(out, ".eE") {
		out = append(out, '.', '0')
	}
	return out, nil
}
