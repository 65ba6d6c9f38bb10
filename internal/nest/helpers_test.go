package nest

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// newTestRegistry 返回使用临时目录与空日志的独立 Registry，测试之间互不干扰。
func newTestRegistry(t *testing.T) (*Registry, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	settings := NewSettings()
	if !settings.SetStoragePath(t.TempDir()) {
		t.Fatalf("设置临时目录失败")
	}
	return NewRegistry(WithSettings(settings), WithLogger(logger)), hook
}
