package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"jdkprov/internal/theme"
	"jdkprov/internal/updater"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update jdkprov to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check if updates are disabled
			if !state.cfg.Update.Enabled {
				fmt.Println(theme.WarningMessage("Updates are disabled in configuration."))
				fmt.Println(theme.Faint.Render("To enable, set update.enabled to true in " + state.cfg.Path()))
				return nil
			}

			upd, err := updater.NewUpdater(state.cfg, Version, state.logger)
			if err != nil {
				return err
			}
			if upd.Repository() == "" {
				fmt.Println(theme.WarningMessage("No release repository configured."))
				fmt.Println(theme.Faint.Render("Set update.repository (owner/name) in " + state.cfg.Path()))
				return nil
			}

			updater.PrintChecking(os.Stdout, upd.Repository())

			ctx, cancel := context.WithTimeout(cmd.Context(), updater.UpdateTimeout)
			defer cancel()

			release, err := upd.CheckForUpdate(ctx)
			if err != nil {
				return fmt.Errorf("update check failed: %w", err)
			}
			if release == nil {
				updater.PrintUpToDate(os.Stdout, upd.CurrentVersion())
				return nil
			}

			action, err := upd.PromptForUpdate(release)
			if err != nil {
				fmt.Println(theme.WarningMessage("Update cancelled."))
				return nil
			}

			switch action {
			case updater.ActionUpdate:
			case updater.ActionSkip:
				fmt.Println(theme.InfoMessage(fmt.Sprintf("Skipped version %s", release.Version())))
				return nil
			default:
				fmt.Println(theme.InfoMessage("Update postponed"))
				return nil
			}

			updater.PrintDownloading(os.Stdout, release)
			if err := upd.PerformUpdate(ctx, release); err != nil {
				fmt.Println(theme.Faint.Render("Please try again or download manually from:"))
				fmt.Println(theme.Faint.Render("https://github.com/" + upd.Repository() + "/releases"))
				return err
			}

			updater.PrintUpdated(os.Stdout, release.Version())
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the jdkprov version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			linkStyle := lipgloss.NewStyle().
				Foreground(theme.Info).
				Underline(true)

			fmt.Printf("%s %s %s\n",
				theme.Subtitle.Render("Java provisioner (jdkprov)"),
				theme.Faint.Render("version"),
				theme.HighlightText(Version))
			if repo := updater.ReleaseRepository(state.cfg.Update); repo != "" {
				fmt.Println(linkStyle.Render("https://github.com/" + repo))
			}
		},
	}
}

// offlineCommands never trigger the background update check. provision,
// locate and list must not touch the network when nothing is downloaded.
var offlineCommands = map[string]bool{
	"provision": true,
	"locate":    true,
	"list":      true,
	"update":    true,
	"version":   true,
}

// checkForUpdateBackground prints a notice when a newer release exists.
// It is rate limited by the updater and never fails the command.
func checkForUpdateBackground(ctx context.Context) {
	if state.cfg == nil {
		return
	}

	upd, err := updater.NewUpdater(state.cfg, Version, state.logger)
	if err != nil || !upd.ShouldCheckForUpdate() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	release, err := upd.CheckForUpdate(ctx)
	if err != nil || release == nil {
		state.logger.Debug("background update check", "err", err)
		return
	}

	updater.Notify(os.Stderr, upd.CurrentVersion(), release.Version())
}
