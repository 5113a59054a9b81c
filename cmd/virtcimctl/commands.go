package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jimyag/virtcim/internal/virtcim/config"
	"github.com/jimyag/virtcim/pkg/acl"
	"github.com/jimyag/virtcim/pkg/checkrun"
	"github.com/jimyag/virtcim/pkg/device"
	"github.com/jimyag/virtcim/pkg/domain"
	"github.com/jimyag/virtcim/pkg/pool"
)

var allKinds = []device.Kind{
	device.KindDisk,
	device.KindNet,
	device.KindMem,
	device.KindVcpu,
	device.KindEmulator,
	device.KindGraphics,
	device.KindInput,
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:          "virtcimctl",
		Short:        "Inspect libvirt XML and run migration checks offline",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newDevicesCmd(),
		newDomainCmd(),
		newPoolCmd(),
		newFilterCmd(),
		newCheckCmd(),
	)
	return rootCmd
}

func newDevicesCmd() *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "devices FILE",
		Short: "List the devices of a domain XML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := allKinds
			if kindName != "" {
				kind, ok := device.ParseKind(kindName)
				if !ok {
					return fmt.Errorf("unknown device kind %q", kindName)
				}
				kinds = []device.Kind{kind}
			}

			doc, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			type view struct {
				ID     string        `json:"id"`
				Kind   string        `json:"kind"`
				Device device.Device `json:"device"`
			}
			out := []view{}
			for _, kind := range kinds {
				for _, dev := range device.Parse(doc, kind) {
					out = append(out, view{ID: dev.ID(), Kind: kind.String(), Device: dev})
				}
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&kindName, "kind", "k", "", "device kind (disk, net, mem, vcpu, emulator, graphics, input)")
	return cmd
}

func newDomainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domain FILE",
		Short: "Parse a domain XML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			dom, err := domain.Parse(doc)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dom)
		},
	}
}

func newPoolCmd() *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "pool FILE",
		Short: "Parse a storage pool XML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := pool.ParseKind(kindName)
			if !ok {
				return fmt.Errorf("unknown pool kind %q", kindName)
			}
			doc, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			p, err := pool.Parse(doc, kind)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().StringVarP(&kindName, "kind", "k", "disk", "pool kind (disk or net)")
	return cmd
}

func newFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filter FILE",
		Short: "Parse a network filter XML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			f, err := acl.Parse(doc)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), f)
		},
	}
}

func newCheckCmd() *cobra.Command {
	var (
		dir     string
		timeout time.Duration
		params  []string
	)

	cmd := &cobra.Command{
		Use:   "check DOMAIN URI",
		Short: "Run the migration check scripts against a domain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := checkrun.WriteParams(params)
			if err != nil {
				return err
			}
			defer os.Remove(path)

			runner := checkrun.New(dir, timeout)
			if err := runner.RunAll(cmd.Context(), args[0], args[1], path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All migration checks passed")
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", config.DefaultChecksDir, "migration checks directory")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", config.DefaultCheckTimeout, "timeout of a single check")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "line written to the check parameter file")
	return cmd
}

// readInput 读取文件内容，"-" 表示标准输入
func readInput(cmd *cobra.Command, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
