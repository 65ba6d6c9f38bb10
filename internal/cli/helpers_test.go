package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// cliEnv 为每个测试准备独立的存储目录与配置文件。
type cliEnv struct {
	t       *testing.T
	storage string
	config  string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv(ConfigEnv, "")
	storage := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "nest.toml")
	content := "LogLevel = \"warn\"\nStoragePath = \"" + filepath.ToSlash(storage) + "\"\n"
	if err := os.WriteFile(cfg, []byte(content), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return &cliEnv{t: t, storage: storage, config: cfg}
}

// run 执行一次 CLI 调用，返回退出码与 stdout/stderr 内容。
func (e *cliEnv) run(args ...string) (int, string, string) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	code := Run(append([]string{"--config", e.config}, args...), &out, &errOut)
	return code, strings.TrimSpace(out.String()), errOut.String()
}
