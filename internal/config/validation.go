package config

import (
	"errors"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/graphite-go/nest/internal/digest"
)

// Validate 针对语义级别做进一步校验，防止非法配置进入缓存层。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("Global.LogLevel", "无法识别的日志级别: "+g.LogLevel)
	}
	if g.LogMaxSize < 0 {
		return newFieldError("Global.LogMaxSize", "不能为负数")
	}
	if g.LogMaxBackups < 0 {
		return newFieldError("Global.LogMaxBackups", "不能为负数")
	}
	if strings.TrimSpace(g.StoragePath) == "" {
		return newFieldError("Global.StoragePath", "不能为空")
	}
	if !digest.Supported(g.HashAlgorithm) {
		return newFieldError("Global.HashAlgorithm", "仅支持 "+strings.Join(digest.Algorithms(), "|"))
	}
	if err := validateExtension(g.FileExtension); err != nil {
		return newFieldError("Global.FileExtension", err.Error())
	}
	if g.FileMode.Value()&^os.ModePerm != 0 {
		return newFieldError("Global.FileMode", "必须在 0000-0777")
	}
	return nil
}

func validateExtension(ext string) error {
	if ext == "" {
		return errors.New("不能为空")
	}
	if strings.ContainsAny(ext, `./\`) {
		return errors.New("不允许包含点或路径分隔符")
	}
	if strings.Contains(ext, " ") {
		return errors.New("不允许包含空格")
	}
	return nil
}
