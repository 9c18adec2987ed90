package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"jdkprov/internal/config"
	"jdkprov/internal/installer"
	"jdkprov/internal/java"
	"jdkprov/internal/logging"
	"jdkprov/internal/platform"
	"jdkprov/internal/theme"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Version is set during build time via ldflags
var Version = "dev"

// errSilent marks failures already reported to the user
var errSilent = errors.New("silent failure")

// app carries what every command needs once flags and config are resolved
type app struct {
	cfg    *config.Config
	logger *log.Logger
}

var (
	cfgFile    string
	installDir string
	logLevel   string

	state = &app{}
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jdkprov",
		Short: "Find and provision Java installations",
		Long: theme.Title.Render("jdkprov") + theme.Subtitle.Render(" - Java discovery and provisioning") + `

jdkprov finds the JDKs and JREs already installed on this machine and
downloads Eclipse Temurin builds from Adoptium when none match.

` + theme.Subtitle.Render("Examples:") + `
  jdkprov list               List every Java installation found
  jdkprov provision 17       Print the home of a Java 17 JDK, downloading it if needed
  jdkprov locate /opt/jdk    Describe the installation at a path`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadState,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if !offlineCommands[cmd.Name()] {
				checkForUpdateBackground(cmd.Context())
			}
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/jdkprov/config.json)")
	root.PersistentFlags().StringVar(&installDir, "install-dir", "", "managed installation root (default is ~/.jdkprov/jdks)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newListCmd(),
		newLocateCmd(),
		newProvisionCmd(),
		newRemoveCmd(),
		newAddPathCmd(),
		newRemovePathCmd(),
		newListPathsCmd(),
		newUpdateCmd(),
		newVersionCmd(),
	)
	return root
}

// loadState resolves config, then lets flags override it
func loadState(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if installDir != "" {
		cfg.InstallDir = installDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	state.cfg = cfg
	state.logger = logging.New(os.Stderr, cfg.LogLevel)
	return nil
}

// locator returns a locator for the host OS
func (a *app) locator() *java.Locator {
	return java.NewLocator(a.logger)
}

// manager wires the managed root to the Adoptium catalog
func (a *app) manager(ignoreMacAArch64 bool) *installer.Manager {
	provisioner := installer.NewAdoptiumProvisioner(
		installer.NewHTTPDownloader("jdkprov/"+Version),
		platform.Current(),
		a.logger,
	)
	if a.cfg.AdoptiumURL != "" {
		provisioner.BaseURL = a.cfg.AdoptiumURL
	}

	return installer.NewManager(a.cfg.InstallDir, provisioner, a.locator(),
		installer.WithLogger(a.logger),
		installer.WithIgnoreMacAArch64(ignoreMacAArch64 || a.cfg.IgnoreMacAArch64),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, theme.ErrorMessage(err.Error()))
		}
		os.Exit(1)
	}
}
