package nest

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func TestSecondInstanceCopiesRegisteredSnapshot(t *testing.T) {
	r, _ := newTestRegistry(t)
	first := r.New("shared")
	first.Add("a", 1).Add("b", "two")

	second := r.New("shared")
	if second.Hash() != first.Hash() {
		t.Fatalf("同名实例 hash 应一致")
	}
	if !reflect.DeepEqual(second.Snapshot(), first.Snapshot()) {
		t.Fatalf("第二个实例应复制第一个实例的快照")
	}

	second.Add("c", 3)
	if first.Has("c") {
		t.Fatalf("复制后的实例应互相独立")
	}
	if owner, ok := r.Lookup("shared"); !ok || owner != first {
		t.Fatalf("注册表应保留首个实例")
	}
	if r.Len() != 1 {
		t.Fatalf("同名实例只应注册一次，得到 %d", r.Len())
	}
}

func TestExistsUsesDefaultAlgorithm(t *testing.T) {
	r, _ := newTestRegistry(t)
	if r.Exists("ghost") {
		t.Fatalf("未创建的缓存不应存在")
	}
	r.New("present")
	if !r.Exists("present") {
		t.Fatalf("已构造的缓存应存在")
	}
	r.New("other-algo", WithAlgorithm("sha1"))
	if r.Exists("other-algo") {
		t.Fatalf("Exists 只按默认算法查找")
	}
}

func TestConcurrentConstructionRegistersOnce(t *testing.T) {
	r, _ := newTestRegistry(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Context("race").Add("k", "v")
		}()
	}
	wg.Wait()

	if r.Len() != 1 {
		t.Fatalf("并发构造只应注册一个实例，得到 %d", r.Len())
	}
	n, _ := r.Lookup("race")
	if n.Changed() != 1 {
		t.Fatalf("规范实例只应被写入一次，得到 %d", n.Changed())
	}
}

func TestDestroyRemovesFileAndEvicts(t *testing.T) {
	r, hook := newTestRegistry(t)
	n := r.New("doomed")
	n.Add("k", "v")
	if err := n.Write(); err != nil {
		t.Fatalf("Write 失败: %v", err)
	}

	if !r.Destroy("doomed") {
		t.Fatalf("存在的文件应被删除")
	}
	if _, err := os.Stat(n.File()); !os.IsNotExist(err) {
		t.Fatalf("文件应已被删除")
	}
	if r.Exists("doomed") {
		t.Fatalf("Destroy 应同时移除注册实例")
	}
	if r.Destroy("doomed") {
		t.Fatalf("重复删除应返回 false")
	}
	if entry := hook.LastEntry(); entry == nil || entry.Data["action"] != "nest_destroy" {
		t.Fatalf("应记录 nest_destroy 日志")
	}

	fresh := r.New("doomed")
	if fresh.Count() != 0 {
		t.Fatalf("删除后重新构造应为空缓存")
	}
}

func TestDestroyWithExplicitPathAndAlgorithm(t *testing.T) {
	r, _ := newTestRegistry(t)
	dir := t.TempDir()
	n := r.New("custom", WithPath(dir), WithAlgorithm("sha256"))
	n.Add("k", "v")
	if err := n.Write(); err != nil {
		t.Fatalf("Write 失败: %v", err)
	}

	if r.Destroy("custom") {
		t.Fatalf("默认目录与算法下不应找到文件")
	}
	if !r.Destroy("custom", WithPath(dir), WithAlgorithm("sha256")) {
		t.Fatalf("指定目录与算法后应删除成功")
	}
	if r.Destroy("custom", WithAlgorithm("not-a-real-algo")) {
		t.Fatalf("非法算法应返回 false")
	}
}

func TestDestroyAllRemovesOnlyCacheFiles(t *testing.T) {
	r, _ := newTestRegistry(t)
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		n := r.New(name, WithPath(dir))
		n.Add("k", name)
		if err := n.Write(); err != nil {
			t.Fatalf("Write 失败: %v", err)
		}
	}
	unrelated := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(unrelated, []byte("keep"), 0o600); err != nil {
		t.Fatalf("写入无关文件失败: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.nest"), 0o755); err != nil {
		t.Fatalf("创建子目录失败: %v", err)
	}

	if !r.DestroyAll(dir) {
		t.Fatalf("目录存在时应返回 true")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读取目录失败: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if !reflect.DeepEqual(names, []string{"notes.txt", "sub.nest"}) {
		t.Fatalf("只应删除三个缓存文件，剩余 %v", names)
	}
	if r.Len() != 0 {
		t.Fatalf("该目录下的注册实例应被移除，剩余 %d", r.Len())
	}
}

func TestDestroyAllMissingDirectory(t *testing.T) {
	r, _ := newTestRegistry(t)
	if r.DestroyAll(filepath.Join(t.TempDir(), "does", "not", "exist")) {
		t.Fatalf("目录不存在时应返回 false")
	}
}

func TestEvictAndReset(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.New("one")
	r.New("two")
	if !r.Evict("one") || r.Evict("one") {
		t.Fatalf("Evict 应只成功一次")
	}
	r.Reset()
	if r.Len() != 0 {
		t.Fatalf("Reset 后注册表应为空")
	}
}
