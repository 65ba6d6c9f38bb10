package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FileMode 支持在 TOML 中以八进制字符串（"0777"、"0o640"）或整数书写文件权限。
type FileMode os.FileMode

// UnmarshalText 使 Viper 可以识别 "0777" 这类写法。
func (m *FileMode) UnmarshalText(text []byte) error {
	parsed, err := parseFileMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value 返回真实的 os.FileMode。
func (m FileMode) Value() os.FileMode {
	return os.FileMode(m)
}

func parseFileMode(raw string) (FileMode, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FileMode(0), nil
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0o"), "0O")
	v, err := strconv.ParseUint(raw, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file mode value: %s", raw)
	}
	return FileMode(v), nil
}

// GlobalConfig 描述日志与缓存存储的全局参数。
type GlobalConfig struct {
	LogLevel          string   `mapstructure:"LogLevel"`
	LogFilePath       string   `mapstructure:"LogFilePath"`
	LogMaxSize        int      `mapstructure:"LogMaxSize"`
	LogMaxBackups     int      `mapstructure:"LogMaxBackups"`
	LogCompress       bool     `mapstructure:"LogCompress"`
	StoragePath       string   `mapstructure:"StoragePath"`
	CreateStoragePath bool     `mapstructure:"CreateStoragePath"`
	HashAlgorithm     string   `mapstructure:"HashAlgorithm"`
	FileExtension     string   `mapstructure:"FileExtension"`
	FileMode          FileMode `mapstructure:"FileMode"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
}
