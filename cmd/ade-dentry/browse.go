package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xADE/ade-dentry/internal/indexer"
)

// newDiscoverCommand creates the `ade-dentry discover` command.
func newDiscoverCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Print every discovered .desktop file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range app.Scanner().Discover() {
				fmt.Fprintln(out, path)
			}
			return nil
		},
	}
}

// newCatsCommand creates the `ade-dentry cats` command.
func newCatsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cats",
		Short: "List categories with entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx := buildIndex(cmd, app)
			out := cmd.OutOrStdout()
			for _, cat := range idx.Categories() {
				fmt.Fprintf(out, "%s %s\n", headingStyle.Render(cat), mutedStyle.Render(fmt.Sprintf("(%d)", idx.Count(cat))))
			}
			return nil
		},
	}
}

// newListCommand creates the `ade-dentry ls` command.
// Without a category every category is printed with its entries.
func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [category]",
		Short: "List entries grouped by category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx := buildIndex(cmd, app)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				for _, item := range idx.Entries(args[0]) {
					fmt.Fprintf(out, "%s\t%s\n", item.Name, mutedStyle.Render(item.Path))
				}
				return nil
			}

			for _, group := range idx.Groups() {
				fmt.Fprintf(out, "%s %s\n", headingStyle.Render(group.Category), mutedStyle.Render(fmt.Sprintf("(%d)", len(group.Items))))
				for _, item := range group.Items {
					fmt.Fprintf(out, "  %s\t%s\n", item.Name, mutedStyle.Render(item.Path))
				}
			}
			return nil
		},
	}
}

func buildIndex(cmd *cobra.Command, app *App) *indexer.CategoryIndex {
	return indexer.Build(cmd.Context(), app.Scanner().Discover())
}
