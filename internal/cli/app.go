package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/graphite-go/nest/internal/config"
	"github.com/graphite-go/nest/internal/logging"
	"github.com/graphite-go/nest/internal/nest"
)

// 退出码约定。
const (
	ExitSuccess    = 0
	ExitFailure    = 1
	ExitUsageError = 2
)

// ConfigEnv 指定配置文件路径的环境变量，--config 优先级更高。
const ConfigEnv = "NEST_CONFIG"

// errNoResult 表示命令正常执行但结果为“否”（key 不存在、无文件可删等），只影响退出码。
var errNoResult = errors.New("no result")

// usageError 标记参数错误，映射到 ExitUsageError。
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// app 汇总一次 CLI 调用的上下文，便于在测试中注入输出。
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	storage    string
	algorithm  string

	cfg      *config.Config
	logger   *logrus.Logger
	registry *nest.Registry
}

// resolveConfigPath 按 flag > 环境变量 > 默认 的顺序决定配置文件。
func (a *app) resolveConfigPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	return os.Getenv(ConfigEnv)
}

// setup 加载配置、初始化日志并构造 Registry。只在需要访问缓存的命令中调用。
func (a *app) setup() error {
	if a.registry != nil {
		return nil
	}

	cfg, err := config.Load(a.resolveConfigPath())
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if a.storage != "" {
		cfg.Global.StoragePath = a.storage
	}
	if a.algorithm != "" {
		cfg.Global.HashAlgorithm = a.algorithm
	}

	logger, err := logging.InitLogger(cfg.Global, a.errOut)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}

	settings := nest.NewSettings()
	if err := cfg.Apply(settings); err != nil {
		return usageError{err}
	}

	a.cfg = cfg
	a.logger = logger
	a.registry = nest.NewRegistry(nest.WithSettings(settings), nest.WithLogger(logger))
	return nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
