package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Run 构造命令树并执行，返回进程退出码。
func Run(args []string, stdout, stderr io.Writer) int {
	a := &app{out: stdout, errOut: stderr}
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errNoResult):
		return ExitFailure
	}

	fmt.Fprintln(stderr, "Error:", err.Error())
	var usage usageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}
	return ExitFailure
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "nest",
		Short:         "File-backed key-value cache",
		Long:          "nest stores named key-value caches as one file per cache, addressed by the digest of the cache name.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "配置文件路径（默认 ./nest.toml，可被 "+ConfigEnv+" 覆盖）")
	flags.StringVar(&a.storage, "path", "", "覆盖默认存储目录")
	flags.StringVar(&a.algorithm, "algo", "", "覆盖默认摘要算法")

	root.AddCommand(
		newGetCommand(a),
		newHasCommand(a),
		newAddCommand(a),
		newSetCommand(a),
		newRemoveCommand(a),
		newInfoCommand(a),
		newDumpCommand(a),
		newDestroyCommand(a),
		newDestroyAllCommand(a),
		newAlgorithmsCommand(a),
		newCheckConfigCommand(a),
		newVersionCommand(a),
	)
	return root
}

// exactArgs 与 cobra.ExactArgs 相同，但把错误标记为参数错误。
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}
