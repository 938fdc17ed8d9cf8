package cmd

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zjrosen/lexkit/internal/config"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or edit highlight colors",
	Long: `Show or edit the tag colors used by --output highlight.

A token takes the color of its type name, then of its other tags in
sorted order, then the default color for its kind.`,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured tag colors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tags := make([]string, 0, len(cfg.Theme))
		for tag := range cfg.Theme {
			tags = append(tags, tag)
		}
		slices.Sort(tags)
		out := cmd.OutOrStdout()
		if len(tags) == 0 {
			_, _ = fmt.Fprintln(out, "no theme colors configured")
			return nil
		}
		for _, tag := range tags {
			color := cfg.Theme[tag]
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(tag)
			_, _ = fmt.Fprintf(out, "%s\t%s\n", swatch, color)
		}
		return nil
	},
}

var themeSetCmd = &cobra.Command{
	Use:     "set <tag> <color>",
	Short:   "Set the color of a tag",
	Example: `  lexkit theme set keyword "#CBA6F7"`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if err := config.SetThemeColor(path, args[0], args[1]); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "theme.%s = %s (%s)\n", args[0], args[1], path)
		return nil
	},
}

var themeUnsetCmd = &cobra.Command{
	Use:   "unset <tag>",
	Short: "Remove the color of a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if err := config.SetThemeColor(path, args[0], ""); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "theme.%s removed (%s)\n", args[0], path)
		return nil
	},
}

func init() {
	themeCmd.AddCommand(themeListCmd, themeSetCmd, themeUnsetCmd)
	rootCmd.AddCommand(themeCmd)
}
