package main

import (
	"fmt"
	"os"

	"jdkprov/internal/theme"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newAddPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-path <directory>",
		Short: "Add a directory whose children are Java installations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				return fmt.Errorf("%s is not a directory", path)
			}
			if state.cfg.HasSearchPath(path) {
				fmt.Println(theme.InfoMessage("Search path already configured: " + path))
				return nil
			}

			state.cfg.AddSearchPath(path)
			if err := state.cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Println(theme.SuccessMessage("Added search path: " + path))
			return nil
		},
	}
}

func newRemovePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-path [directory]",
		Short: "Remove a configured search path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(state.cfg.SearchPaths) == 0 {
				fmt.Println(theme.InfoMessage("No custom search paths configured."))
				return nil
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				options := make([]huh.Option[string], 0, len(state.cfg.SearchPaths))
				for _, p := range state.cfg.SearchPaths {
					options = append(options, huh.NewOption(theme.PathStyle.Render(p), p))
				}
				err := huh.NewSelect[string]().
					Title(theme.Subtitle.Render("Select Search Path to Remove")).
					Options(options...).
					Value(&path).
					Run()
				if err != nil {
					return err
				}
			}

			if !state.cfg.RemoveSearchPath(path) {
				return fmt.Errorf("search path not configured: %s", path)
			}
			if err := state.cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Println(theme.SuccessMessage("Removed search path: " + path))
			return nil
		},
	}
}

func newListPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-paths",
		Short: "Show the directories scanned for Java installations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(theme.Title.Render("Java Search Paths"))
			fmt.Println()

			fmt.Println(theme.LabelStyle.Render("Standard Paths (built-in):"))
			fmt.Println(renderPaths(state.locator().SearchRoots()))
			fmt.Println()

			fmt.Println(theme.LabelStyle.Render("Managed Root:"))
			fmt.Println(renderPaths([]string{state.cfg.InstallDir}))
			fmt.Println()

			if len(state.cfg.SearchPaths) == 0 {
				fmt.Println(theme.InfoStyle.Render("No custom search paths configured."))
				fmt.Println(theme.Faint.Render("Use 'jdkprov add-path <directory>' to add one."))
				return nil
			}
			fmt.Println(theme.LabelStyle.Render("Custom Search Paths:"))
			fmt.Println(renderPaths(state.cfg.SearchPaths))
			return nil
		},
	}
}

func renderPaths(paths []string) string {
	headerStyle := theme.TableHeader
	cellStyle := theme.TableCell
	existsStyle := theme.SuccessStyle.Padding(0, 1)

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Left,
		headerStyle.Width(58).Render("Path"),
		headerStyle.Render("Status"),
	)}

	for _, p := range paths {
		status := cellStyle.Faint(true).Render("Not found")
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			status = existsStyle.Render("✓ Exists")
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
			cellStyle.Width(58).Render(p),
			status,
		))
	}

	return theme.TableStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
