package nest

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/graphite-go/nest/internal/digest"
)

const (
	// DefaultExtension 是缓存文件的默认扩展名（不含点）。
	DefaultExtension = "nest"
	// DefaultFileMode 与原有行为一致：写入后文件对所有进程可读写。
	DefaultFileMode os.FileMode = 0o777
)

// Settings 保存进程级的默认配置。所有 setter 在输入非法时返回 false 并保留旧值。
type Settings struct {
	mu        sync.RWMutex
	path      string
	algorithm string
	extension string
	fileMode  os.FileMode
}

// NewSettings 返回默认配置：系统临时目录 + md5 + .nest。
func NewSettings() *Settings {
	return &Settings{
		path:      os.TempDir(),
		algorithm: digest.Default,
		extension: DefaultExtension,
		fileMode:  DefaultFileMode,
	}
}

// SetStoragePath 设置默认存储目录，目录必须已存在。
func (s *Settings) SetStoragePath(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}

	s.mu.Lock()
	s.path = filepath.Clean(path)
	s.mu.Unlock()
	return true
}

// StoragePath 返回默认存储目录。
func (s *Settings) StoragePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// SetHashAlgorithm 设置默认摘要算法，未注册的算法会被拒绝。
func (s *Settings) SetHashAlgorithm(algo string) bool {
	if !digest.Supported(algo) {
		return false
	}

	s.mu.Lock()
	s.algorithm = digest.Normalize(algo)
	s.mu.Unlock()
	return true
}

// HashAlgorithm 返回默认摘要算法。
func (s *Settings) HashAlgorithm() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.algorithm
}

// SetFileExtension 设置缓存文件扩展名，允许带前导点，但不能包含路径分隔符或更多的点。
func (s *Settings) SetFileExtension(ext string) bool {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" || strings.ContainsAny(ext, `./\`) {
		return false
	}

	s.mu.Lock()
	s.extension = ext
	s.mu.Unlock()
	return true
}

// FileExtension 返回缓存文件扩展名（不含点）。
func (s *Settings) FileExtension() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.extension
}

// SetFileMode 设置写入后的文件权限，仅接受权限位。
func (s *Settings) SetFileMode(mode os.FileMode) bool {
	if mode&^os.ModePerm != 0 {
		return false
	}

	s.mu.Lock()
	s.fileMode = mode
	s.mu.Unlock()
	return true
}

// FileMode 返回写入后的文件权限。
func (s *Settings) FileMode() os.FileMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fileMode
}

// cacheFile 拼出 <dir>/<hash>.<ext>。
func cacheFile(dir, hash, ext string) string {
	return filepath.Join(dir, hash+"."+ext)
}
