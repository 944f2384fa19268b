package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/txext/internal/app"
	"github.com/felixgeelhaar/txext/internal/config"
	"github.com/felixgeelhaar/txext/internal/domain/extension"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
	hookMode  string
	pluginDir string
)

var rootCmd = &cobra.Command{
	Use:   "txext",
	Short: "Manage signal exchange extensions",
	Long: `txext loads extension modules that contribute signal types, content
types and exchange APIs, and keeps track of which ones are enabled.

An extension module exports a TXManifest value. Modules compiled into txext
are found by identifier; others are loaded from <plugin-dir>/<module>.so.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $TXEXT_CONFIG or ~/.txext/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&hookMode, "hook-mode", "", "hook contract (entrypoint, bootstrap-verify)")
	rootCmd.PersistentFlags().StringVar(&pluginDir, "plugin-dir", "", "directory of Go plugin shared objects")

	_ = rootCmd.RegisterFlagCompletionFunc("hook-mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"entrypoint\tCall Entrypoint once",
			"bootstrap-verify\tCall Bootstrap then Verify (legacy)",
		}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(versionCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

// newService builds the extension service from the config file and global
// flags. Flags take precedence over file values.
func newService(stderr io.Writer) (*app.ExtensionService, error) {
	path := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	} else if verbose {
		cfg.Log.Level = "debug"
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	logger, err := app.NewLogger(cfg.Log, stderr)
	if err != nil {
		return nil, err
	}

	opts := []app.ServiceOption{app.WithLogger(logger)}
	if hookMode != "" {
		mode, err := extension.ParseHookMode(hookMode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, app.WithHookMode(mode))
	}
	if pluginDir != "" {
		cfg.PluginDir = pluginDir
		opts = append(opts, app.WithResolver(app.ResolverFor(cfg)))
	}

	return app.NewExtensionService(path, opts...), nil
}

// formatError returns a user-friendly error message.
// With verbose=true, the kind of load failure is included.
func formatError(err error) string {
	msg := err.Error()

	var loadErr *extension.LoadError
	if errors.As(err, &loadErr) {
		if s := loadErr.Suggestion(); s != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", s)
		}
		if verbose {
			msg += fmt.Sprintf("\n\nFailure kind: %s", loadErr.Kind)
			if loadErr.Err != nil {
				msg += fmt.Sprintf("\nCause: %s", strings.TrimSpace(loadErr.Err.Error()))
			}
		}
	}
	return msg
}

func printError(err error) {
	printErrorTo(os.Stderr, err)
}

func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
