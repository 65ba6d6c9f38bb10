package nest

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/tidwall/gjson"
)

// formatValue 将调用方传入的值转换为存储形式：
//   - 标量归一化为 nil/bool/string/int64/uint64/float64，能放入 int64 的无符号数统一为 int64，
//     与文件重新加载后的类型一致；
//   - map/slice/struct 等结构编码为 JSON 文本（对象或数组）。
func formatValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string, bool, int64:
		return val, nil
	case uint64:
		return normalizeUint(val), nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint:
		return normalizeUint(uint64(val)), nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case float32:
		return checkFloat(float64(val))
	case float64:
		return checkFloat(val)
	case json.RawMessage:
		return formatJSON(val)
	}

	rv := reflect.ValueOf(v)
	if !implementsMarshaler(rv.Type()) {
		switch rv.Kind() {
		case reflect.Bool:
			return rv.Bool(), nil
		case reflect.String:
			return rv.String(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return normalizeUint(rv.Uint()), nil
		case reflect.Float32, reflect.Float64:
			return checkFloat(rv.Float())
		case reflect.Map:
			if rv.IsNil() {
				return "{}", nil
			}
		case reflect.Slice:
			if rv.IsNil() {
				return "[]", nil
			}
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("format value: %w", err)
	}
	return formatJSON(data)
}

func formatJSON(data []byte) (any, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("format value: invalid JSON")
	}
	res := gjson.ParseBytes(data)
	if res.IsObject() || res.IsArray() {
		return string(data), nil
	}
	return scalarFromJSON(res), nil
}

func normalizeUint(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

func checkFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("format value: unsupported float %v", f)
	}
	return f, nil
}

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

func implementsMarshaler(t reflect.Type) bool {
	return t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType)
}

// parseValue 是 formatValue 的逆过程：只有 JSON 对象或数组文本会被解码，
// 形如 "42"、"true" 的字符串保持原样。
func parseValue(raw any) any {
	s, ok := raw.(string)
	if !ok || !isStructured(s) {
		return raw
	}
	return jsonValue(gjson.Parse(s))
}

func isStructured(s string) bool {
	if s == "" || !gjson.Valid(s) {
		return false
	}
	res := gjson.Parse(s)
	return res.IsObject() || res.IsArray()
}

// sameValue 判断新值与已存储的值是否等价；结构化文本按解码后的内容比较。
func sameValue(stored, formatted any) bool {
	if stored == formatted {
		return true
	}
	a, okA := stored.(string)
	b, okB := formatted.(string)
	if okA && okB && isStructured(a) && isStructured(b) {
		return reflect.DeepEqual(jsonValue(gjson.Parse(a)), jsonValue(gjson.Parse(b)))
	}
	return false
}
