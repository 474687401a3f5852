package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/0xADE/ade-dentry/internal/indexer/desktop"
)

const (
	formatDesktop = "desktop"
	formatYAML    = "yaml"
)

// errInvalid is returned when at least one file fails validation
var errInvalid = errors.New("validation failed")

// newShowCommand creates the `ade-dentry show` command.
func newShowCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print an entry as desktop text or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := app.Store.Open(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatDesktop:
				_, err = file.WriteTo(out)
				return err
			case formatYAML:
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(file); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown output format %q (want %s or %s)", format, formatDesktop, formatYAML)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatDesktop, "output format: desktop or yaml")
	return cmd
}

// newValidateCommand creates the `ade-dentry validate` command.
// Every path is checked; the command fails if any of them is invalid.
func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>...",
		Short: "Check entries against the desktop entry rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				file, err := app.Store.Open(path)
				if err == nil {
					err = file.Validate()
				}
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s %s: %v\n", errorStyle.Render("✗"), path, err)
					continue
				}
				fmt.Fprintf(out, "%s %s\n", successStyle.Render("✓"), path)
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errInvalid, failed, len(args))
			}
			return nil
		},
	}
}

// newNewCommand creates the `ade-dentry new` command.
func newNewCommand(app *App) *cobra.Command {
	var (
		sets []string
		path string
	)

	cmd := &cobra.Command{
		Use:   "new <name> [exec]",
		Short: "Create an entry in the user application directory",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exec := ""
			if len(args) == 2 {
				exec = args[1]
			}
			file := desktop.New(args[0], exec)
			if exec == "" {
				file.Entry.Exec = nil
			}
			if err := applySets(&file.Entry, sets); err != nil {
				return err
			}
			if err := file.Validate(); err != nil {
				return err
			}

			var err error
			if path != "" {
				err = app.Store.Save(path, file)
			} else {
				path, err = app.Store.Create(file)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "assign a key, as Key=Value (repeatable)")
	cmd.Flags().StringVar(&path, "path", "", "write to this path instead of the user directory")
	return cmd
}

// newSetCommand creates the `ade-dentry set` command.
func newSetCommand(app *App) *cobra.Command {
	var unsets []string

	cmd := &cobra.Command{
		Use:   "set <path> [Key=Value]...",
		Short: "Change keys of an entry and save it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			file, err := app.Store.Open(path)
			if err != nil {
				return err
			}
			if err := applySets(&file.Entry, args[1:]); err != nil {
				return err
			}
			for _, key := range unsets {
				if err := file.Entry.Unset(key); err != nil {
					return err
				}
			}
			if err := file.Validate(); err != nil {
				return err
			}
			if err := app.Store.Save(path, file); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("saved"), path)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&unsets, "unset", nil, "clear an optional key (repeatable)")
	return cmd
}

// newRemoveCommand creates the `ade-dentry rm` command.
func newRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete an entry file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("removed"), args[0])
			return nil
		},
	}
}

// applySets applies Key=Value assignments in order
func applySets(e *desktop.Entry, sets []string) error {
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		if !ok {
			return fmt.Errorf("invalid assignment %q, want Key=Value", set)
		}
		if err := e.Set(strings.TrimSpace(key), value); err != nil {
			return err
		}
	}
	return nil
}
