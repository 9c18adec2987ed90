package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jdkprov/internal/installer"
	"jdkprov/internal/java"
	"jdkprov/internal/theme"
	"jdkprov/internal/ui"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// featureReleases are offered when provision runs without a version
var featureReleases = []string{"25", "21", "17", "11", "8"}

func newListCmd() *cobra.Command {
	var managedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List Java installations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var installs []*java.Install
			err := ui.RunTask(cmd.Context(), "Scanning for Java installations", func(ctx context.Context) error {
				if managedOnly {
					installs = state.manager(false).Installs(ctx)
				} else {
					roots := append([]string{state.cfg.InstallDir}, state.cfg.SearchPaths...)
					installs = state.locator().FindAll(ctx, roots)
				}
				return ctx.Err()
			})
			if err != nil {
				return err
			}

			if len(installs) == 0 {
				fmt.Println(theme.WarningMessage("No Java installations found."))
				fmt.Println(theme.Faint.Render("Run 'jdkprov provision <version>' to download one."))
				return nil
			}

			fmt.Println(theme.Title.Render("Java Installations:"))
			fmt.Println()
			fmt.Println(renderInstalls(installs, os.Getenv("JAVA_HOME"), state.cfg.InstallDir))
			return nil
		},
	}

	cmd.Flags().BoolVar(&managedOnly, "managed", false, "only list installations under the managed root")
	return cmd
}

// renderInstalls lays installs out as a table, marking the current JAVA_HOME
func renderInstalls(installs []*java.Install, current, managedRoot string) string {
	headerStyle := theme.TableHeader
	cellStyle := theme.TableCell

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Left,
		headerStyle.Width(3).Render(""),
		headerStyle.Width(16).Render("Version"),
		headerStyle.Width(10).Render("Type"),
		headerStyle.Width(10).Render("Arch"),
		headerStyle.Width(22).Render("Vendor"),
		headerStyle.Render("Home"),
	)}

	for _, inst := range installs {
		marker := ""
		version := cellStyle.Width(16).Render(inst.ImplVersion)
		if current != "" && sameDir(inst.JavaHome, current) {
			marker = "→"
			version = theme.CurrentStyle.Padding(0, 1).Width(16).Render(inst.ImplVersion)
		}

		kind := "JRE"
		if inst.HasCompiler {
			kind = "JDK"
		}
		if inst.IsAltJVM {
			kind += " (J9)"
		}

		home := theme.PathStyle.Padding(0, 1).Render(inst.JavaHome)
		if managedRoot != "" && strings.HasPrefix(filepath.Clean(inst.JavaHome), filepath.Clean(managedRoot)+string(filepath.Separator)) {
			home += theme.Faint.Render(" (managed)")
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
			cellStyle.Width(3).Render(marker),
			version,
			cellStyle.Width(10).Render(kind),
			cellStyle.Width(10).Render(inst.Architecture.String()),
			cellStyle.Width(22).Render(inst.Vendor),
			home,
		))
	}

	return theme.TableStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func sameDir(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}

func newLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate <path>",
		Short: "Describe the Java installation at a path",
		Long:  "Probe a java executable, a java home or an installation directory and print what it reports.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				install *java.Install
				ok      bool
			)
			err := ui.RunTask(cmd.Context(), "Probing "+args[0], func(ctx context.Context) error {
				install, ok = state.locator().Locate(ctx, args[0])
				return ctx.Err()
			})
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(os.Stderr, theme.ErrorMessage("No usable Java installation at "+args[0]))
				return errSilent
			}
			fmt.Println(renderInstall(install))
			return nil
		},
	}
}

func renderInstall(inst *java.Install) string {
	semver := inst.Semver().String()

	lines := []struct{ label, value string }{
		{"Version", inst.ImplVersion},
		{"Feature", inst.LangVersion.Short()},
		{"Semver", semver},
		{"Home", theme.PathStyle.Render(inst.JavaHome)},
		{"Vendor", inst.Vendor},
		{"VM", inst.ImplName},
		{"Runtime", strings.TrimSpace(inst.RuntimeName + " " + inst.RuntimeVersion)},
		{"Arch", inst.Architecture.String()},
		{"Compiler", fmt.Sprintf("%t", inst.HasCompiler)},
		{"OpenJ9", fmt.Sprintf("%t", inst.IsAltJVM)},
	}

	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s %s\n", theme.LabelStyle.Width(10).Render(l.label+":"), theme.ValueStyle.Render(l.value))
	}
	return theme.Box.Render(strings.TrimRight(b.String(), "\n"))
}

func newProvisionCmd() *cobra.Command {
	var (
		semver           string
		jreOnly          bool
		ignoreMacAArch64 bool
		quiet            bool
	)

	cmd := &cobra.Command{
		Use:   "provision [version]",
		Short: "Print the home of a matching JDK, downloading it if needed",
		Long: `Look for an installation of the requested Java version under the managed
root and download an Eclipse Temurin build from Adoptium when there is none.
The java home is printed on stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			} else {
				selected, err := selectFeatureRelease()
				if err != nil {
					return err
				}
				raw = selected
			}

			version, ok := java.ParseVersion(raw)
			if !ok {
				return fmt.Errorf("invalid java version %q", raw)
			}

			var listener installer.ProgressListener
			if !quiet {
				listener = ui.NewDownloadProgress("Java "+version.Short(), os.Stderr)
			}

			home, err := state.manager(ignoreMacAArch64).Provision(cmd.Context(), version, semver, jreOnly, listener)
			if err != nil {
				var integrityErr *installer.IntegrityError
				if errors.As(err, &integrityErr) {
					fmt.Fprintln(os.Stderr, theme.Faint.Render("The download did not match the published checksum; nothing was installed."))
				}
				return err
			}

			if !quiet {
				fmt.Fprintln(os.Stderr, theme.SuccessMessage("Java "+version.Short()+" is ready"))
			}
			fmt.Println(home)
			return nil
		},
	}

	cmd.Flags().StringVar(&semver, "semver", "", "exact release, e.g. 17.0.1+12")
	cmd.Flags().BoolVar(&jreOnly, "jre", false, "accept or download a JRE instead of a JDK")
	cmd.Flags().BoolVar(&ignoreMacAArch64, "ignore-mac-aarch64", false, "use x64 builds on Apple silicon")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the java home")
	return cmd
}

func selectFeatureRelease() (string, error) {
	options := make([]huh.Option[string], 0, len(featureReleases))
	for _, v := range featureReleases {
		options = append(options, huh.NewOption(theme.CurrentStyle.Render("Java")+" "+v, v))
	}

	var selected string
	err := huh.NewSelect[string]().
		Title(theme.Subtitle.Render("Select Java Version")).
		Description(theme.Faint.Render("Use arrow keys to navigate, Enter to select")).
		Options(options...).
		Value(&selected).
		Run()
	if err != nil {
		return "", err
	}
	return selected, nil
}

func newRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove [name]",
		Short: "Delete a managed installation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := state.manager(false)

			name := ""
			if len(args) == 1 {
				name = args[0]
			} else {
				installs := m.Installs(cmd.Context())
				if len(installs) == 0 {
					fmt.Println(theme.InfoMessage("No managed installations in " + m.Root()))
					return nil
				}
				selected, err := selectManaged(m.Root(), installs)
				if err != nil {
					return err
				}
				name = selected
			}

			if !yes {
				confirmed, err := confirmAction(
					"Remove "+name+"?",
					"This deletes "+filepath.Join(m.Root(), name),
				)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Println(theme.InfoMessage("Cancelled"))
					return nil
				}
			}

			if err := m.Remove(name); err != nil {
				return err
			}
			fmt.Println(theme.SuccessMessage("Removed " + name))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// selectManaged asks for one managed install and returns its directory name
func selectManaged(root string, installs []*java.Install) (string, error) {
	options := make([]huh.Option[string], 0, len(installs))
	for _, inst := range installs {
		rel, err := filepath.Rel(root, inst.JavaHome)
		if err != nil {
			continue
		}
		name, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
		label := theme.CurrentStyle.Render(inst.ImplVersion) + " " + theme.Faint.Render(name)
		options = append(options, huh.NewOption(label, name))
	}

	var selected string
	err := huh.NewSelect[string]().
		Title(theme.Subtitle.Render("Select Installation to Remove")).
		Options(options...).
		Value(&selected).
		Run()
	return selected, err
}

func confirmAction(title, description string) (bool, error) {
	var confirmed bool

	err := huh.NewConfirm().
		Title(theme.Subtitle.Render(title)).
		Description(theme.Faint.Render(description)).
		Affirmative(theme.SuccessStyle.Render("Yes")).
		Negative(theme.ErrorStyle.Render("No")).
		Value(&confirmed).
		Run()

	return confirmed, err
}
