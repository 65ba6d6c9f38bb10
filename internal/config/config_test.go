package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/graphite-go/nest/internal/nest"
)

func TestLoadWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeTempConfig(t, `StoragePath = "`+filepath.ToSlash(filepath.Join(dir, "cache"))+`"`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.HashAlgorithm != "md5" {
		t.Fatalf("HashAlgorithm 默认应为 md5，得到 %s", cfg.Global.HashAlgorithm)
	}
	if cfg.Global.FileExtension != nest.DefaultExtension {
		t.Fatalf("FileExtension 默认应为 %s", nest.DefaultExtension)
	}
	if cfg.Global.FileMode.Value() != nest.DefaultFileMode {
		t.Fatalf("FileMode 默认应为 0777，得到 %o", cfg.Global.FileMode)
	}
	if cfg.Global.LogLevel != "info" {
		t.Fatalf("LogLevel 默认应为 info")
	}
	if _, err := os.Stat(cfg.Global.StoragePath); err != nil {
		t.Fatalf("CreateStoragePath 默认开启，目录应被创建: %v", err)
	}
}

func TestLoadFixture(t *testing.T) {
	cfg, err := Load(testConfigPath(t, "valid.toml"))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(cfg.Global.StoragePath) })

	if cfg.Global.HashAlgorithm != "sha256" {
		t.Fatalf("算法名应被规范化，得到 %s", cfg.Global.HashAlgorithm)
	}
	if cfg.Global.FileExtension != "cache" {
		t.Fatalf("扩展名应去掉前导点，得到 %s", cfg.Global.FileExtension)
	}
	if cfg.Global.FileMode.Value() != 0o640 {
		t.Fatalf("FileMode 应解析八进制字符串，得到 %o", cfg.Global.FileMode)
	}
	if !filepath.IsAbs(cfg.Global.StoragePath) {
		t.Fatalf("StoragePath 应转换为绝对路径")
	}
}

func TestLoadRejectsInvalidAlgorithm(t *testing.T) {
	_, err := Load(testConfigPath(t, "invalid_algo.toml"))
	var fieldErr FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "Global.HashAlgorithm" {
		t.Fatalf("非法算法应返回 HashAlgorithm 字段错误，得到 %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("显式指定的配置文件不存在时应报错")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeTempConfig(t, `StoragePath = "`+filepath.ToSlash(dir)+`"`)
	t.Setenv("NEST_HASHALGORITHM", "sha1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.HashAlgorithm != "sha1" {
		t.Fatalf("环境变量应覆盖配置文件，得到 %s", cfg.Global.HashAlgorithm)
	}
}

func TestValidateRules(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*GlobalConfig)
		field  string
	}{
		{"bad level", func(g *GlobalConfig) { g.LogLevel = "loud" }, "Global.LogLevel"},
		{"empty storage", func(g *GlobalConfig) { g.StoragePath = " " }, "Global.StoragePath"},
		{"bad extension", func(g *GlobalConfig) { g.FileExtension = "a/b" }, "Global.FileExtension"},
		{"bad mode", func(g *GlobalConfig) { g.FileMode = FileMode(os.ModeDir | 0o755) }, "Global.FileMode"},
		{"negative backups", func(g *GlobalConfig) { g.LogMaxBackups = -1 }, "Global.LogMaxBackups"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg.Global)
			var fieldErr FieldError
			if err := cfg.Validate(); !errors.As(err, &fieldErr) || fieldErr.Field != tc.field {
				t.Fatalf("期望 %s 字段错误，得到 %v", tc.field, err)
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("合法配置不应报错: %v", err)
	}
}

func TestApplyPushesSettings(t *testing.T) {
	cfg := validConfig()
	cfg.Global.StoragePath = t.TempDir()
	settings := nest.NewSettings()

	if err := cfg.Apply(settings); err != nil {
		t.Fatalf("Apply 失败: %v", err)
	}
	if settings.StoragePath() != cfg.Global.StoragePath || settings.HashAlgorithm() != "sha256" {
		t.Fatalf("Settings 未被更新")
	}
	if settings.FileExtension() != "nest" || settings.FileMode() != 0o700 {
		t.Fatalf("扩展名或权限未被更新")
	}

	cfg.Global.StoragePath = filepath.Join(cfg.Global.StoragePath, "missing")
	if err := cfg.Apply(settings); err == nil {
		t.Fatalf("不存在的目录应导致 Apply 失败")
	}
}

func TestFileModeUnmarshalText(t *testing.T) {
	var m FileMode
	if err := m.UnmarshalText([]byte("0o755")); err != nil || m.Value() != 0o755 {
		t.Fatalf("0o 前缀应被识别: %v %o", err, m)
	}
	if err := m.UnmarshalText([]byte("999")); err == nil {
		t.Fatalf("非八进制值应报错")
	}
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			LogLevel:      "info",
			StoragePath:   "./data",
			HashAlgorithm: "sha256",
			FileExtension: "nest",
			FileMode:      FileMode(0o700),
		},
	}
}
