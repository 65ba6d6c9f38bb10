package kv

// Pair 是快照中的一个键值对，保持插入顺序。
type Pair struct {
	Key   string
	Value any
}

// Store 维护按插入顺序排列的键值映射。零值不可用，请使用 New。
// Store 本身不加锁，由持有者负责同步。
type Store struct {
	index map[string]int
	pairs []Pair
}

// New 返回一个空的 Store。
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Add 仅在 key 不存在时插入；已存在时拒绝覆盖并返回 false。
func (s *Store) Add(key string, value any) bool {
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.pairs)
	s.pairs = append(s.pairs, Pair{Key: key, Value: value})
	return true
}

// Set 覆盖已存在 key 的值，位置保持不变；key 不存在时返回 false。
func (s *Store) Set(key string, value any) bool {
	idx, ok := s.index[key]
	if !ok {
		return false
	}
	s.pairs[idx].Value = value
	return true
}

// Remove 删除 key，并保持其余条目的相对顺序。
func (s *Store) Remove(key string) bool {
	idx, ok := s.index[key]
	if !ok {
		return false
	}
	copy(s.pairs[idx:], s.pairs[idx+1:])
	s.pairs[len(s.pairs)-1] = Pair{}
	s.pairs = s.pairs[:len(s.pairs)-1]
	delete(s.index, key)
	for i := idx; i < len(s.pairs); i++ {
		s.index[s.pairs[i].Key] = i
	}
	return true
}

// Get 返回 key 对应的值以及是否存在。
func (s *Store) Get(key string) (any, bool) {
	idx, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return s.pairs[idx].Value, true
}

// Has 判断 key 是否存在。
func (s *Store) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Len 返回条目数量。
func (s *Store) Len() int {
	return len(s.pairs)
}

// Keys 按插入顺序返回所有 key 的副本。
func (s *Store) Keys() []string {
	keys := make([]string, len(s.pairs))
	for i, p := range s.pairs {
		keys[i] = p.Key
	}
	return keys
}

// Pairs 按插入顺序返回完整快照，修改返回值不会影响 Store。
func (s *Store) Pairs() []Pair {
	out := make([]Pair, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// ToMap 返回无序的 map 快照，便于调用方按 key 比较。
func (s *Store) ToMap() map[string]any {
	out := make(map[string]any, len(s.pairs))
	for _, p := range s.pairs {
		out[p.Key] = p.Value
	}
	return out
}

// Clone 复制出一个独立的 Store，条目顺序与原 Store 一致。
func (s *Store) Clone() *Store {
	clone := New()
	for _, p := range s.pairs {
		clone.Add(p.Key, p.Value)
	}
	return clone
}
