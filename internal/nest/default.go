package nest

var defaultRegistry = NewRegistry()

// Default 返回进程级默认 Registry。
func Default() *Registry {
	return defaultRegistry
}

// New 在默认 Registry 上构造 nest。
func New(name string, opts ...Option) *Nest {
	return defaultRegistry.New(name, opts...)
}

// Exists 判断默认 Registry 中是否已注册 name。
func Exists(name string) bool {
	return defaultRegistry.Exists(name)
}

// Destroy 删除默认 Registry 下 name 的缓存文件。
func Destroy(name string, opts ...Option) bool {
	return defaultRegistry.Destroy(name, opts...)
}

// DestroyAll 删除目录下全部缓存文件；path 为空时使用默认目录。
func DestroyAll(path string) bool {
	return defaultRegistry.DestroyAll(path)
}

// Call 在默认 Registry 上按方法名访问缓存。
func Call(method string, args ...any) Result {
	return defaultRegistry.Call(method, args...)
}

// SetStoragePath 设置默认存储目录。
func SetStoragePath(path string) bool {
	return defaultRegistry.settings.SetStoragePath(path)
}

// StoragePath 返回默认存储目录。
func StoragePath() string {
	return defaultRegistry.settings.StoragePath()
}

// SetHashAlgorithm 设置默认摘要算法。
func SetHashAlgorithm(algo string) bool {
	return defaultRegistry.settings.SetHashAlgorithm(algo)
}

// HashAlgorithm 返回默认摘要算法。
func HashAlgorithm() string {
	return defaultRegistry.settings.HashAlgorithm()
}
