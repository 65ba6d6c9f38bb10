package nest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/graphite-go/nest/internal/kv"
)

// fileStore 负责缓存文件的读写删除。entryLock 按文件路径串行化
// “读取 → 重建” 序列，避免同一进程内的并发写互相覆盖。
type fileStore struct {
	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func newFileStore() *fileStore {
	return &fileStore{locks: make(map[string]*entryLock)}
}

// read 加载缓存文件。文件不存在时返回 fs.ErrNotExist，调用方据此退化为空缓存。
func (s *fileStore) read(path string) ([]kv.Pair, error) {
	unlock := s.lockEntry(path)
	defer unlock()

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fs.ErrNotExist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeFile(data)
}

// write 以临时文件 + rename 的方式重建缓存文件，最后设置权限。
func (s *fileStore) write(path string, data []byte, mode os.FileMode) error {
	unlock := s.lockEntry(path)
	defer unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage path: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".nest-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(data)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return err
	}

	if err := os.Rename(tempName, path); err != nil {
		os.Remove(tempName)
		return err
	}
	return os.Chmod(path, mode)
}

// remove 删除单个缓存文件，返回是否真的删除了文件。
func (s *fileStore) remove(path string) (bool, error) {
	unlock := s.lockEntry(path)
	defer unlock()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, err
	}
	return true, nil
}

// removeAll 删除 dir 下（不递归）所有扩展名为 ext 的普通文件。
// 返回目录是否存在以及实际删除的文件数。
func (s *fileStore) removeAll(dir, ext string) (bool, int, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false, 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return true, 0, err
	}

	var (
		removed int
		errs    []error
	)
	for _, e := range entries {
		if !e.Type().IsRegular() || !hasExtension(e.Name(), ext) {
			continue
		}
		ok, err := s.remove(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			removed++
		}
	}
	return true, removed, errors.Join(errs...)
}

func (s *fileStore) lockEntry(path string) func() {
	key := filepath.Clean(path)
	s.mu.Lock()
	lock := s.locks[key]
	if lock == nil {
		lock = &entryLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

func hasExtension(name, ext string) bool {
	return strings.EqualFold(strings.TrimPrefix(filepath.Ext(name), "."), ext)
}
