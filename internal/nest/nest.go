package nest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/graphite-go/nest/internal/digest"
	"github.com/graphite-go/nest/internal/kv"
)

// ErrNotFound 表示 key 不在缓存中。
var ErrNotFound = errors.New("nest key not found")

// Nest 是单个命名缓存。name/hash/path/algorithm 在构造后不可变；
// store 中只保存摘要后的 key。
type Nest struct {
	registry *Registry

	id        string
	name      string
	hash      string
	path      string
	algorithm string
	file      string

	mu      sync.RWMutex
	store   *kv.Store
	changed bool
	changes int
}

func (n *Nest) key(k string) string {
	return digest.MustSum(n.algorithm, k)
}

// Add 在 key 不存在时写入值；已存在时不做任何事。
func (n *Nest) Add(key string, value any) *Nest {
	n.mu.Lock()
	defer n.mu.Unlock()

	hashed := n.key(key)
	if n.store.Has(hashed) {
		return n
	}
	formatted, err := formatValue(value)
	if err != nil {
		n.logFormatError("nest_add", err)
		return n
	}
	n.store.Add(hashed, formatted)
	n.markChanged("add")
	return n
}

// Set 仅在 key 已存在且新值与当前值不同时覆盖。
func (n *Nest) Set(key string, value any) *Nest {
	n.mu.Lock()
	defer n.mu.Unlock()

	hashed := n.key(key)
	current, ok := n.store.Get(hashed)
	if !ok {
		return n
	}
	formatted, err := formatValue(value)
	if err != nil {
		n.logFormatError("nest_set", err)
		return n
	}
	if sameValue(current, formatted) {
		return n
	}
	n.store.Set(hashed, formatted)
	n.markChanged("set")
	return n
}

// Remove 删除 key；不存在时不做任何事。
func (n *Nest) Remove(key string) *Nest {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.store.Remove(n.key(key)) {
		return n
	}
	n.markChanged("remove")
	return n
}

// Get 返回 key 对应的值，结构化值会被解码；不存在时返回 nil。
func (n *Nest) Get(key string) any {
	v, _ := n.Lookup(key)
	return v
}

// Lookup 与 Get 相同，但额外返回 key 是否存在，用于区分存储的 nil/false 与缺失。
func (n *Nest) Lookup(key string) (any, bool) {
	n.mu.RLock()
	raw, ok := n.store.Get(n.key(key))
	n.mu.RUnlock()

	n.registry.metrics.recordLookup(n.name, ok)
	if !ok {
		return nil, false
	}
	return parseValue(raw), true
}

// Has 判断 key 是否存在。
func (n *Nest) Has(key string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.store.Has(n.key(key))
}

// Decode 将结构化值解码到 out（通常是结构体指针），字段名按 json tag 匹配。
func (n *Nest) Decode(key string, out any) error {
	v, ok := n.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Write 在存在未落盘修改时重建缓存文件，成功后清零修改计数。无修改时直接返回 nil。
func (n *Nest) Write() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.changed || n.changes <= 0 {
		return nil
	}

	data, err := encodeFile(n.store)
	if err != nil {
		return fmt.Errorf("encode nest %s: %w", n.name, err)
	}
	if err := n.registry.files.write(n.file, data, n.registry.settings.FileMode()); err != nil {
		n.registry.logger.WithFields(n.logFields("nest_write")).WithError(err).Warn("cache file write failed")
		return fmt.Errorf("write nest %s: %w", n.name, err)
	}

	n.registry.metrics.recordWrite(n.name, len(data))
	n.registry.logger.WithFields(n.logFields("nest_write")).
		WithField("changes", n.changes).
		WithField("bytes", len(data)).
		Debug("nest written")

	n.changed = false
	n.changes = 0
	return nil
}

// ID 返回实例的唯一标识，仅用于日志关联。
func (n *Nest) ID() string { return n.id }

// Name 返回缓存名称。
func (n *Nest) Name() string { return n.name }

// Hash 返回名称的摘要，也是缓存文件名与注册表 key。
func (n *Nest) Hash() string { return n.hash }

// Path 返回存储目录。
func (n *Nest) Path() string { return n.path }

// Algorithm 返回本实例用于 key 摘要的算法。
func (n *Nest) Algorithm() string { return n.algorithm }

// File 返回缓存文件的完整路径。
func (n *Nest) File() string { return n.file }

// Count 返回条目数量。
func (n *Nest) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.store.Len()
}

// Keys 按插入顺序返回摘要后的 key。
func (n *Nest) Keys() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.store.Keys()
}

// Snapshot 返回按插入顺序排列的原始键值对（摘要 key + 存储形式的值）。
func (n *Nest) Snapshot() []kv.Pair {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.store.Pairs()
}

// ToMap 返回原始数据的 map 快照。
func (n *Nest) ToMap() map[string]any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.store.ToMap()
}

// ToJSON 返回与缓存文件内容一致的 JSON。
func (n *Nest) ToJSON() ([]byte, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return encodeFile(n.store)
}

// IsChanged 表示是否存在未落盘的修改。
func (n *Nest) IsChanged() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.changed
}

// Changed 返回自上次落盘以来的修改次数。
func (n *Nest) Changed() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.changes
}

func (n *Nest) cloneStore() *kv.Store {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.store.Clone()
}

// markChanged 需在持有写锁时调用。
func (n *Nest) markChanged(op string) {
	n.changed = true
	n.changes++
	n.registry.metrics.recordMutation(n.name, op)
	n.registry.logger.WithFields(n.logFields("nest_" + op)).Debug("nest mutated")
}

func (n *Nest) logFormatError(action string, err error) {
	n.registry.logger.WithFields(n.logFields(action)).WithError(err).Warn("value cannot be stored")
}

func (n *Nest) logFields(action string) logrus.Fields {
	return logrus.Fields{
		"action":      action,
		"nest":        n.name,
		"hash":        n.hash,
		"path":        n.path,
		"instance_id": n.id,
	}
}
