package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/graphite-go/nest/internal/config"
)

// BaseFields 构建 action + 配置路径等基础字段，便于不同命令复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// SettingsFields 输出生效的存储参数，供启动与 check-config 日志复用。
func SettingsFields(g config.GlobalConfig) logrus.Fields {
	return logrus.Fields{
		"storage_path":   g.StoragePath,
		"hash_algorithm": g.HashAlgorithm,
		"file_extension": g.FileExtension,
		"file_mode":      g.FileMode.Value().String(),
	}
}

// Merge 将多组字段合并为一组，后者覆盖前者。
func Merge(sets ...logrus.Fields) logrus.Fields {
	out := logrus.Fields{}
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}
