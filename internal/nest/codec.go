package nest

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/graphite-go/nest/internal/kv"
)

// errCorruptFile 表示缓存文件不是合法的 JSON 对象。
var errCorruptFile = errors.New("cache file is not a JSON object")

// encodeFile 将 store 序列化为按插入顺序排列的 JSON 对象。
func encodeFile(store *kv.Store) ([]byte, error) {
	return store.MarshalJSON()
}

// decodeFile 按文件中的顺序解析出原始键值对。键被视为已经摘要过的 key，原样保留。
func decodeFile(data []byte) ([]kv.Pair, error) {
	if !gjson.ValidBytes(data) {
		return nil, errCorruptFile
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errCorruptFile
	}

	var pairs []kv.Pair
	root.ForEach(func(key, value gjson.Result) bool {
		pairs = append(pairs, kv.Pair{Key: key.String(), Value: scalarFromJSON(value)})
		return true
	})
	return pairs, nil
}

// scalarFromJSON 把单个 JSON 值转换为存储层使用的标量。
// 嵌套对象/数组保留原始文本，与 formatValue 的编码结果一致。
func scalarFromJSON(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.String:
		return r.Str
	case gjson.Number:
		return parseNumber(r.Raw, r.Num)
	default:
		return r.Raw
	}
}

func parseNumber(raw string, f float64) any {
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return u
		}
	}
	return f
}

// jsonValue 递归解码结构化文本。数字与顶层标量遵循同一规则（int64/uint64/float64），
// 避免大整数经 float64 丢失精度。
func jsonValue(r gjson.Result) any {
	switch {
	case r.IsObject():
		m := make(map[string]any)
		r.ForEach(func(key, value gjson.Result) bool {
			m[key.String()] = jsonValue(value)
			return true
		})
		return m
	case r.IsArray():
		list := make([]any, 0)
		r.ForEach(func(_, value gjson.Result) bool {
			list = append(list, jsonValue(value))
			return true
		})
		return list
	}
	return scalarFromJSON(r)
}
