package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/graphite-go/nest/internal/digest"
	"github.com/graphite-go/nest/internal/nest"
)

// EnvPrefix 是覆盖配置项的环境变量前缀，例如 NEST_STORAGEPATH。
const EnvPrefix = "NEST"

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
// path 为空且 ./nest.toml 不存在时，仅使用默认值与环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = "nest.toml"
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if explicit || !isMissingFile(err) {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(fileModeDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absStorage, err := filepath.Abs(cfg.Global.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.Global.StoragePath = absStorage

	if cfg.Global.CreateStoragePath {
		if err := os.MkdirAll(absStorage, 0o755); err != nil {
			return nil, fmt.Errorf("创建缓存目录失败: %w", err)
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("StoragePath", "./storage")
	v.SetDefault("CreateStoragePath", true)
	v.SetDefault("HashAlgorithm", digest.Default)
	v.SetDefault("FileExtension", nest.DefaultExtension)
	v.SetDefault("FileMode", "0777")
}

func applyGlobalDefaults(g *GlobalConfig) {
	g.LogLevel = strings.ToLower(strings.TrimSpace(g.LogLevel))
	if g.LogLevel == "" {
		g.LogLevel = "info"
	}
	g.HashAlgorithm = digest.Normalize(g.HashAlgorithm)
	if g.HashAlgorithm == "" {
		g.HashAlgorithm = digest.Default
	}
	g.FileExtension = strings.TrimPrefix(strings.TrimSpace(g.FileExtension), ".")
	if g.FileExtension == "" {
		g.FileExtension = nest.DefaultExtension
	}
	if g.FileMode == 0 {
		g.FileMode = FileMode(nest.DefaultFileMode)
	}
}

func fileModeDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(FileMode(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return parseFileMode(v)
		case int:
			return FileMode(v), nil
		case int64:
			return FileMode(v), nil
		case uint32:
			return FileMode(v), nil
		case FileMode:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 FileMode 类型: %T", v)
		}
	}
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Apply 将配置写入 nest.Settings；任一 setter 失败都会返回带字段路径的错误。
func (c *Config) Apply(s *nest.Settings) error {
	g := c.Global
	if !s.SetStoragePath(g.StoragePath) {
		return newFieldError("Global.StoragePath", "目录不存在: "+g.StoragePath)
	}
	if !s.SetHashAlgorithm(g.HashAlgorithm) {
		return newFieldError("Global.HashAlgorithm", "不支持的算法: "+g.HashAlgorithm)
	}
	if !s.SetFileExtension(g.FileExtension) {
		return newFieldError("Global.FileExtension", "非法扩展名: "+g.FileExtension)
	}
	if !s.SetFileMode(g.FileMode.Value()) {
		return newFieldError("Global.FileMode", "仅支持权限位")
	}
	return nil
}
