package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/graphite-go/nest/internal/digest"
	"github.com/graphite-go/nest/internal/logging"
	"github.com/graphite-go/nest/internal/nest"
	"github.com/graphite-go/nest/internal/version"
)

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <cache> <key>",
		Short: "Print a value as JSON",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			res := a.registry.Call(args[0], args[1])
			if !res.Found() {
				fmt.Fprintf(a.errOut, "key %q not found in %s\n", args[1], res.Nest.Name())
				return errNoResult
			}
			data, err := json.Marshal(res.Value)
			if err != nil {
				return err
			}
			a.printf("%s\n", data)
			return nil
		},
	}
}

func newHasCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "has <cache> <key>",
		Short: "Exit 0 when the key exists, 1 otherwise",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			if !a.registry.Call(args[0]).Nest.Has(args[1]) {
				return errNoResult
			}
			return nil
		},
	}
}

func newAddCommand(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "add <cache> <key> <value>",
		Short: "Add a key if it does not exist yet and persist the cache",
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			n := a.registry.Call(args[0]).Nest
			if n.Has(args[1]) {
				fmt.Fprintf(a.errOut, "key %q already exists in %s\n", args[1], n.Name())
				return errNoResult
			}
			return a.persist(n.Add(args[1], parseValueArg(args[2], raw)))
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "按原样保存为字符串，不解析 JSON")
	return cmd
}

func newSetCommand(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "set <cache> <key> <value>",
		Short: "Overwrite an existing key and persist the cache",
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			res := a.registry.Call(args[0], args[1], parseValueArg(args[2], raw))
			if !res.Found() {
				fmt.Fprintf(a.errOut, "key %q not found in %s\n", args[1], res.Nest.Name())
				return errNoResult
			}
			return a.persist(res.Nest)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "按原样保存为字符串，不解析 JSON")
	return cmd
}

func newRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <cache> <key>",
		Aliases: []string{"rm"},
		Short:   "Remove a key and persist the cache",
		Args:    exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			n := a.registry.Call(args[0]).Nest
			if !n.Has(args[1]) {
				fmt.Fprintf(a.errOut, "key %q not found in %s\n", args[1], n.Name())
				return errNoResult
			}
			return a.persist(n.Remove(args[1]))
		},
	}
}

// cacheInfo 是 info 命令的输出结构。
type cacheInfo struct {
	Name      string `json:"name"`
	Hash      string `json:"hash"`
	Algorithm string `json:"algorithm"`
	Path      string `json:"path"`
	File      string `json:"file"`
	Entries   int    `json:"entries"`
}

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <cache>",
		Short: "Show cache metadata",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			n := a.registry.Call(args[0]).Nest
			data, err := json.MarshalIndent(cacheInfo{
				Name:      n.Name(),
				Hash:      n.Hash(),
				Algorithm: n.Algorithm(),
				Path:      n.Path(),
				File:      n.File(),
				Entries:   n.Count(),
			}, "", "  ")
			if err != nil {
				return err
			}
			a.printf("%s\n", data)
			return nil
		},
	}
}

func newDumpCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <cache>",
		Short: "Print the raw stored entries (hashed keys) as JSON",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			data, err := a.registry.Call(args[0]).Nest.ToJSON()
			if err != nil {
				return err
			}
			a.printf("%s\n", data)
			return nil
		},
	}
}

func newDestroyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy <cache>",
		Short: "Delete the cache file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			name := nest.CacheName(args[0])
			if !a.registry.Destroy(name) {
				fmt.Fprintf(a.errOut, "no cache file for %s\n", name)
				return errNoResult
			}
			a.printf("destroyed %s\n", name)
			return nil
		},
	}
}

func newDestroyAllCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy-all [dir]",
		Short: "Delete every cache file in a directory (default: storage path)",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			dir := a.registry.Settings().StoragePath()
			if len(args) == 1 {
				dir = args[0]
			}
			if !a.registry.DestroyAll(dir) {
				fmt.Fprintf(a.errOut, "directory %q does not exist\n", dir)
				return errNoResult
			}
			a.printf("cleared\n")
			return nil
		},
	}
}

func newAlgorithmsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List supported hash algorithms",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range digest.Algorithms() {
				a.printf("%s\n", name)
			}
			return nil
		},
	}
}

func newCheckConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the configuration and exit",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			fields := logging.Merge(
				logging.BaseFields("check_config", a.resolveConfigPath()),
				logging.SettingsFields(a.cfg.Global),
			)
			fields["result"] = "ok"
			a.logger.WithFields(fields).Info("配置校验通过")
			return nil
		},
	}
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print nest version",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printf("%s\n", version.Full())
			return nil
		},
	}
}

// persist 落盘；Write 只在确有修改时才会触碰文件。
func (a *app) persist(n *nest.Nest) error {
	return n.Write()
}

// parseValueArg 将命令行参数解析为值：合法 JSON 按 JSON 解析（整数保持整数），
// 否则视为普通字符串。raw 为 true 时不做解析。
func parseValueArg(arg string, raw bool) any {
	if raw || !gjson.Valid(arg) {
		return arg
	}
	res := gjson.Parse(arg)
	if res.Type == gjson.Number {
		if i, err := strconv.ParseInt(res.Raw, 10, 64); err == nil {
			return i
		}
	}
	return res.Value()
}
