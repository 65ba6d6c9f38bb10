package nest

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"

	"github.com/graphite-go/nest/internal/digest"
	"github.com/graphite-go/nest/internal/kv"
)

// Registry 维护 hash → 规范实例 的映射，保证同一进程内每个 hash 至多一份权威副本。
type Registry struct {
	settings *Settings
	logger   logrus.FieldLogger
	metrics  *metrics
	files    *fileStore

	mu        sync.Mutex
	instances map[string]*Nest
}

// RegistryOption 用于定制 Registry 的依赖。
type RegistryOption func(*registryConfig)

type registryConfig struct {
	settings *Settings
	logger   logrus.FieldLogger
	meter    metric.Meter
}

// WithSettings 注入共享的 Settings。
func WithSettings(s *Settings) RegistryOption {
	return func(c *registryConfig) {
		c.settings = s
	}
}

// WithLogger 注入日志实例，默认使用 logrus 全局 logger。
func WithLogger(l logrus.FieldLogger) RegistryOption {
	return func(c *registryConfig) {
		c.logger = l
	}
}

// WithMeter 注入 OpenTelemetry Meter，默认取全局 MeterProvider。
func WithMeter(m metric.Meter) RegistryOption {
	return func(c *registryConfig) {
		c.meter = m
	}
}

// NewRegistry 构造一个独立的 Registry。
func NewRegistry(opts ...RegistryOption) *Registry {
	var cfg registryConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.settings == nil {
		cfg.settings = NewSettings()
	}
	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}

	return &Registry{
		settings:  cfg.settings,
		logger:    cfg.logger,
		metrics:   mustMetrics(cfg.meter),
		files:     newFileStore(),
		instances: make(map[string]*Nest),
	}
}

// Settings 返回 Registry 使用的进程级配置。
func (r *Registry) Settings() *Settings {
	return r.settings
}

// New 构造一个 nest 并加载数据。构造永不失败：
//   - 若该 hash 尚无注册实例，则本实例成为规范实例，并尝试从磁盘加载；
//     文件缺失或不可读时以空缓存开始。
//   - 若已有注册实例，则复制其当前快照，之后两者互不影响。
func (r *Registry) New(name string, opts ...Option) *Nest {
	o := buildOptions(opts)

	algo := r.settings.HashAlgorithm()
	if o.algorithm != "" {
		if digest.Supported(o.algorithm) {
			algo = digest.Normalize(o.algorithm)
		} else {
			r.logger.WithFields(logrus.Fields{
				"action":    "nest_open",
				"nest":      name,
				"algorithm": o.algorithm,
			}).Warn("unsupported hash algorithm, falling back to default")
		}
	}

	path := o.path
	if path == "" {
		path = r.settings.StoragePath()
	}
	path = filepath.Clean(path)

	hash := digest.MustSum(algo, name)
	n := &Nest{
		registry:  r,
		id:        uuid.NewString(),
		name:      name,
		hash:      hash,
		path:      path,
		algorithm: algo,
		file:      cacheFile(path, hash, r.settings.FileExtension()),
		store:     kv.New(),
	}
	r.load(n)
	return n
}

func (r *Registry) load(n *Nest) {
	n.mu.Lock()
	defer n.mu.Unlock()

	r.mu.Lock()
	owner, registered := r.instances[n.hash]
	if !registered {
		r.instances[n.hash] = n
	}
	r.mu.Unlock()

	if registered {
		n.store = owner.cloneStore()
		r.logger.WithFields(n.logFields("nest_load")).
			WithField("source", "registry").
			Debug("nest copied from registered instance")
		return
	}

	pairs, err := r.files.read(n.file)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.WithFields(n.logFields("nest_load")).
				WithError(err).
				Warn("cache file unreadable, starting empty")
		}
		return
	}
	for _, p := range pairs {
		n.store.Add(p.Key, p.Value)
	}
	r.logger.WithFields(n.logFields("nest_load")).
		WithField("source", "file").
		WithField("entries", len(pairs)).
		Debug("nest loaded from disk")
}

// Exists 判断 name 在默认算法下的 hash 是否已注册。
func (r *Registry) Exists(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Lookup 返回 name 对应的已注册实例。
func (r *Registry) Lookup(name string) (*Nest, bool) {
	hash := digest.MustSum(r.settings.HashAlgorithm(), name)
	return r.lookupHash(hash)
}

func (r *Registry) lookupHash(hash string) (*Nest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.instances[hash]
	return n, ok
}

// Context 返回 name 的规范实例；尚未注册时以默认目录创建并注册。
func (r *Registry) Context(name string) *Nest {
	if n, ok := r.Lookup(name); ok {
		return n
	}
	n := r.New(name, WithPath(r.settings.StoragePath()))
	if owner, ok := r.lookupHash(n.hash); ok {
		return owner
	}
	return n
}

// Destroy 删除 name 对应的缓存文件，并移除对应的注册实例。
// 返回值表示是否真的删除了文件。
func (r *Registry) Destroy(name string, opts ...Option) bool {
	o := buildOptions(opts)
	path := o.path
	if path == "" {
		path = r.settings.StoragePath()
	}
	algo := o.algorithm
	if algo == "" {
		algo = r.settings.HashAlgorithm()
	}
	hash, err := digest.Sum(algo, name)
	if err != nil {
		return false
	}
	file := cacheFile(filepath.Clean(path), hash, r.settings.FileExtension())

	removed, err := r.files.remove(file)
	fields := logrus.Fields{
		"action": "nest_destroy",
		"nest":   name,
		"hash":   hash,
		"file":   file,
	}
	if err != nil {
		r.logger.WithFields(fields).WithError(err).Warn("cache file not removed")
		return false
	}

	r.mu.Lock()
	if owner, ok := r.instances[hash]; ok && owner.file == file {
		delete(r.instances, hash)
		fields["evicted"] = true
	}
	r.mu.Unlock()

	fields["removed"] = removed
	r.logger.WithFields(fields).Info("nest destroyed")
	return removed
}

// DestroyAll 删除目录下所有缓存文件（不递归），并移除该目录下的注册实例。
// 目录不存在时返回 false。
func (r *Registry) DestroyAll(path string) bool {
	if path == "" {
		path = r.settings.StoragePath()
	}
	dir := filepath.Clean(path)

	exists, removed, err := r.files.removeAll(dir, r.settings.FileExtension())
	if !exists {
		return false
	}

	r.mu.Lock()
	evicted := 0
	for hash, n := range r.instances {
		if n.path == dir {
			delete(r.instances, hash)
			evicted++
		}
	}
	r.mu.Unlock()

	entry := r.logger.WithFields(logrus.Fields{
		"action":  "nest_destroy_all",
		"path":    dir,
		"removed": removed,
		"evicted": evicted,
	})
	if err != nil {
		entry.WithError(err).Warn("some cache files were not removed")
	} else {
		entry.Info("nest directory cleared")
	}
	return true
}

// Evict 仅从注册表中移除 name 的实例，不触碰磁盘。
func (r *Registry) Evict(name string) bool {
	hash := digest.MustSum(r.settings.HashAlgorithm(), name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instances[hash]; !ok {
		return false
	}
	delete(r.instances, hash)
	return true
}

// Reset 清空注册表，相当于模拟一次新进程。
func (r *Registry) Reset() {
	r.mu.Lock()
	r.instances = make(map[string]*Nest)
	r.mu.Unlock()
}

// Len 返回已注册实例数。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}
