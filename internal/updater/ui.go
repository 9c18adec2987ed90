package updater

import (
	"fmt"
	"io"
	"strings"

	"jdkprov/internal/theme"

	"github.com/charmbracelet/huh"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/dustin/go-humanize"
)

// Action is what the user chose to do with an available release
type Action int

const (
	ActionLater Action = iota
	ActionUpdate
	ActionSkip
)

// notesLines is how many lines of release notes the prompt shows
const notesLines = 6

// PromptForUpdate asks whether to install release. Choosing ActionSkip is
// persisted so the release is not offered again.
func (u *Updater) PromptForUpdate(release *selfupdate.Release) (Action, error) {
	details := []string{
		fmt.Sprintf("%s  %s", theme.LabelStyle.Render("Size:"), humanize.IBytes(uint64(max(release.AssetByteSize, 0)))),
	}
	if !release.PublishedAt.IsZero() {
		details = append(details, fmt.Sprintf("%s  %s", theme.LabelStyle.Render("Published:"), humanize.Time(release.PublishedAt)))
	}
	details = append(details, "", summarizeNotes(release.ReleaseNotes, notesLines))

	action := ActionLater
	err := huh.NewSelect[Action]().
		Title(theme.Subtitle.Render(fmt.Sprintf("jdkprov %s is available (running %s)", release.Version(), u.currentVersion))).
		Description(theme.Faint.Render(strings.Join(details, "\n"))).
		Options(
			huh.NewOption(theme.SuccessStyle.Render("Install it now"), ActionUpdate),
			huh.NewOption(theme.WarningStyle.Render("Not now"), ActionLater),
			huh.NewOption(theme.InfoStyle.Render("Never offer "+release.Version()), ActionSkip),
		).
		Value(&action).
		Run()
	if err != nil {
		return ActionLater, err
	}

	if action == ActionSkip {
		if err := u.SkipVersion(release.Version()); err != nil {
			u.logger.Warn("failed to save skip preference", "err", err)
		}
	}
	return action, nil
}

// Notify writes a one-line notice about a newer release
func Notify(w io.Writer, currentVersion, latestVersion string) {
	fmt.Fprintf(w, "%s jdkprov %s is available, you have %s %s\n",
		theme.InfoStyle.Render("ℹ"),
		theme.CurrentStyle.Render(latestVersion),
		theme.Faint.Render(currentVersion),
		theme.Faint.Render("(jdkprov update)"))
}

// PrintChecking reports which repository is being queried
func PrintChecking(w io.Writer, repo string) {
	fmt.Fprintln(w, theme.InfoStyle.Render("Checking "+repo+" for releases..."))
}

// PrintUpToDate reports that version is the newest release
func PrintUpToDate(w io.Writer, version string) {
	fmt.Fprintln(w, theme.SuccessMessage("jdkprov "+version+" is the latest release"))
}

// PrintDownloading reports the asset about to be fetched
func PrintDownloading(w io.Writer, release *selfupdate.Release) {
	fmt.Fprintln(w, theme.InfoStyle.Render(fmt.Sprintf("Downloading %s (%s)...",
		release.AssetName, humanize.IBytes(uint64(max(release.AssetByteSize, 0))))))
}

// PrintUpdated reports a finished self update
func PrintUpdated(w io.Writer, version string) {
	fmt.Fprintln(w, theme.SuccessBox.Render(theme.SuccessStyle.Render("jdkprov "+version+" installed")))
	fmt.Fprintln(w, theme.Faint.Render("Installed JDKs are untouched. The next run uses the new binary."))
}

// summarizeNotes keeps the first maxLines non-empty lines of markdown release
// notes with heading and list markers stripped
func summarizeNotes(notes string, maxLines int) string {
	var lines []string
	for _, line := range strings.Split(notes, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#")
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(lines) == maxLines {
			lines = append(lines, "...")
			break
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return "No release notes."
	}
	return strings.Join(lines, "\n")
}
