package nest

import (
	"fmt"

	"github.com/iancoleman/strcase"
)

// ResultKind 区分 Call 的三种返回情形。
type ResultKind int

const (
	// ResultInstance 表示返回的是缓存实例本身（无 key，或执行了 set）。
	ResultInstance ResultKind = iota
	// ResultValue 表示返回了 key 对应的值。
	ResultValue
	// ResultMissing 表示 key 不存在。
	ResultMissing
)

func (k ResultKind) String() string {
	switch k {
	case ResultInstance:
		return "instance"
	case ResultValue:
		return "value"
	case ResultMissing:
		return "missing"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result 是 Call 的返回值。Nest 总是被填充；Value 仅在 Kind 为 ResultValue 时有意义。
type Result struct {
	Kind  ResultKind
	Nest  *Nest
	Value any
}

// Found 表示调用没有落到“key 不存在”分支。
func (r Result) Found() bool {
	return r.Kind != ResultMissing
}

// CacheName 将驼峰形式的方法名转换为 kebab-case 的缓存名，例如 userSettings → user-settings。
// 数字与连续大写同样作为分词边界：cache2Name → cache-2-name，HTTPCache → http-cache，
// 而不是仅在每个大写字母前插入连字符。
func CacheName(method string) string {
	return strcase.ToKebab(method)
}

// Call 以方法名约定访问缓存：
//
//	Call("userSettings")                  // 返回实例
//	Call("userSettings", "theme")         // 返回 theme 的值
//	Call("userSettings", "theme", "dark") // 覆盖已存在的 theme，返回实例
//
// nil 参数视为未提供。key 不存在时返回 ResultMissing，且不会写入。
func (r *Registry) Call(method string, args ...any) Result {
	n := r.Context(CacheName(method))

	key, hasKey := argAt(args, 0)
	if !hasKey {
		return Result{Kind: ResultInstance, Nest: n}
	}
	k := fmt.Sprint(key)
	if !n.Has(k) {
		return Result{Kind: ResultMissing, Nest: n}
	}

	if value, hasValue := argAt(args, 1); hasValue {
		n.Set(k, value)
		return Result{Kind: ResultInstance, Nest: n}
	}
	return Result{Kind: ResultValue, Nest: n, Value: n.Get(k)}
}

func argAt(args []any, i int) (any, bool) {
	if i >= len(args) || args[i] == nil {
		return nil, false
	}
	return args[i], true
}
