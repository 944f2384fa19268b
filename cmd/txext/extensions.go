package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/txext/internal/domain/extension"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

var extensionsCmd = &cobra.Command{
	Use:     "extensions",
	Aliases: []string{"extension", "ext"},
	Short:   "Manage extensions",
	Long:    `Add, remove, inspect and list the extension modules txext loads.`,
}

var extensionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured extensions",
	Long:  `Display the configured extension modules in load order.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runExtensionsList(cmd)
	},
}

var extensionsAddCmd = &cobra.Command{
	Use:   "add <module>",
	Short: "Load and enable an extension",
	Long: `Load an extension module, check that its signal types, content types
and APIs do not clash with the configured extensions, and enable it.

Examples:
  txext extensions add txext.extensions.rawtext
  txext extensions add tx_extension_clip --plugin-dir ./plugins`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtensionsAdd(cmd, args[0])
	},
}

var extensionsRemoveCmd = &cobra.Command{
	Use:     "remove <module>",
	Aliases: []string{"rm"},
	Short:   "Disable an extension",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtensionsRemove(cmd, args[0])
	},
}

var extensionsInfoCmd = &cobra.Command{
	Use:   "info <module>",
	Short: "Load an extension and show what it provides",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtensionsInfo(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(extensionsCmd)
	extensionsCmd.AddCommand(extensionsListCmd)
	extensionsCmd.AddCommand(extensionsAddCmd)
	extensionsCmd.AddCommand(extensionsRemoveCmd)
	extensionsCmd.AddCommand(extensionsInfoCmd)
}

func runExtensionsList(cmd *cobra.Command) error {
	svc, err := newService(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ids, err := svc.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(ids) == 0 {
		_, _ = fmt.Fprintln(out, "No extensions configured.")
		_, _ = fmt.Fprintln(out, "")
		_, _ = fmt.Fprintln(out, "Enable one using:")
		_, _ = fmt.Fprintln(out, "  txext extensions add <module>")
		return nil
	}

	_, _ = fmt.Fprintln(out, titleStyle.Render("Extensions")+" "+dimStyle.Render("("+svc.ConfigPath()+")"))
	for i, id := range ids {
		_, _ = fmt.Fprintf(out, "  %d. %s\n", i+1, id)
	}
	return nil
}

func runExtensionsAdd(cmd *cobra.Command, id string) error {
	svc, err := newService(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ext, err := svc.Add(cmd.Context(), id)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s (%d signal types, %d content types, %d APIs)\n",
		id, len(ext.SignalTypes()), len(ext.ContentTypes()), len(ext.APIs()))
	return nil
}

func runExtensionsRemove(cmd *cobra.Command, id string) error {
	svc, err := newService(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := svc.Remove(cmd.Context(), id); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", id)
	return nil
}

func runExtensionsInfo(cmd *cobra.Command, id string) error {
	svc, err := newService(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ext, err := svc.Info(cmd.Context(), id)
	if err != nil {
		return err
	}

	writeManifest(cmd.OutOrStdout(), id, ext)
	return nil
}

func writeManifest(w io.Writer, id string, ext extension.Extension) {
	_, _ = fmt.Fprintln(w, titleStyle.Render(id))
	_, _ = fmt.Fprintf(w, "  Signal types:  %s\n", joinNames(ext.SignalTypes()))
	_, _ = fmt.Fprintf(w, "  Content types: %s\n", joinNames(ext.ContentTypes()))
	_, _ = fmt.Fprintf(w, "  APIs:          %s\n", joinNames(ext.APIs()))
}

func joinNames[T interface{ Name() string }](items []T) string {
	if len(items) == 0 {
		return dimStyle.Render("(none)")
	}
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name()
	}
	return strings.Join(names, ", ")
}
