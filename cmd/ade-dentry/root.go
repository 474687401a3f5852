package main

import (
	"github.com/spf13/cobra"

	"github.com/0xADE/ade-dentry/internal/config"
	"github.com/0xADE/ade-dentry/internal/indexer"
	"github.com/0xADE/ade-dentry/internal/store"
)

// App carries the services shared by every subcommand
type App struct {
	Config *config.Config
	Store  *store.Store
}

func newApp(cfg *config.Config) *App {
	return &App{
		Config: cfg,
		Store:  store.NewStore(cfg.UserDir()),
	}
}

// Scanner returns a scanner for the configured roots
func (a *App) Scanner() *indexer.Scanner {
	return a.Config.Scanner()
}

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "ade-dentry",
		Short: "Browse and edit desktop entries",
		Long: headingStyle.Render("ade-dentry") + mutedStyle.Render(" - browse and edit desktop entries") + `

Discovers .desktop files in the system and user application directories,
groups them by category and edits them in place.

` + mutedStyle.Render("Examples:") + `
  ade-dentry cats                         List categories with counts
  ade-dentry ls Office                    List entries in a category
  ade-dentry show -o yaml app.desktop     Print an entry as YAML
  ade-dentry new "My App" myapp           Create a user entry
  ade-dentry set app.desktop Terminal=true
  ade-dentry rm ~/.local/share/applications/my-app.desktop`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newDiscoverCommand(app),
		newCatsCommand(app),
		newListCommand(app),
		newShowCommand(app),
		newValidateCommand(app),
		newNewCommand(app),
		newSetCommand(app),
		newRemoveCommand(app),
	)
	return root
}
