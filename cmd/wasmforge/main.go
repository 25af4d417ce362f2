// Command wasmforge is the thin CLI front-end over the Native Driver
// (package wasmforge): a "run" subcommand and a "version" subcommand,
// grounded on cmd/wazero/wazero.go's doMain(stdout, stderr) int
// separation for unit-testability, re-expressed with cobra per
// SPEC_FULL.md's CLI section.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmforge/wasmforge"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr, os.Args[1:]))
}

// doMain is separated out for unit testing: it never calls os.Exit
// itself, and its own and cobra's output go to the two streams it's
// given. The run subcommand's zap logger writes to the process's stderr,
// and the guest's FDs 1 and 2 write to the process's stdout and stderr.
func doMain(stdout, stderr io.Writer, args []string) int {
	exitCode := 0
	root := newRootCmd(stdout, stderr, &exitCode)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return exitCode
}

func newRootCmd(stdout, stderr io.Writer, exitCode *int) *cobra.Command {
	var mounts []string
	var entryPoint string

	root := &cobra.Command{
		Use:   "wasmforge",
		Short: "Decode and run a WASM module with a minimal host environment.",
	}

	runCmd := &cobra.Command{
		Use:   "run <module.wasm> [argv...]",
		Short: "Decode, instantiate, and execute a WASM module.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, _ := zap.NewProduction()
			defer log.Sync() //nolint:errcheck

			cfg := wasmforge.NewConfig()
			cfg.Log = log
			for _, m := range mounts {
				guest, host, ok := strings.Cut(m, ":")
				if !ok {
					return fmt.Errorf("invalid --mount %q, expected guest:host", m)
				}
				cfg.WithMount(guest, host)
			}
			if entryPoint != "" {
				cfg.WithEntryPoint(entryPoint, args[1:]...)
			} else {
				cfg.Argv = args[1:]
			}

			code, err := wasmforge.Execute(args[0], cfg)
			*exitCode = code
			return err
		},
	}
	runCmd.Flags().StringArrayVar(&mounts, "mount", nil, "guest_prefix:host_path VFS mount (repeatable)")
	runCmd.Flags().StringVar(&entryPoint, "invoke", "", "exported function to run instead of the default entry point")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the wasmforge version.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, version)
			return nil
		},
	}

	root.AddCommand(runCmd, versionCmd)
	return root
}
