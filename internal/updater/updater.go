package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"jdkprov/internal/config"
	"jdkprov/internal/logging"

	"github.com/charmbracelet/log"
	"github.com/creativeprojects/go-selfupdate"
)

// GitHubRepo is the owner/name publishing jdkprov releases, set during build
// time via ldflags. update.repository in the config file overrides it.
var GitHubRepo string

const (
	// CheckInterval is minimum time between update checks
	CheckInterval = 24 * time.Hour

	// UpdateTimeout is maximum time for update operations
	UpdateTimeout = 5 * time.Minute
)

// ErrNoRepository is returned when no release repository is configured
var ErrNoRepository = errors.New("no release repository configured")

// Updater handles checking and applying updates
type Updater struct {
	config         *config.Config
	currentVersion string
	selfUpdater    *selfupdate.Updater
	logger         *log.Logger
}

// NewUpdater creates a new Updater instance
func NewUpdater(cfg *config.Config, version string, logger *log.Logger) (*Updater, error) {
	return newUpdater(cfg, version, logger, nil)
}

// newUpdater reads releases from source, GitHub when nil
func newUpdater(cfg *config.Config, version string, logger *log.Logger, source selfupdate.Source) (*Updater, error) {
	// Configure selfupdate with SHA256 checksum validation
	su, err := selfupdate.NewUpdater(selfupdate.Config{
		Source: source,
		Validator: &selfupdate.ChecksumValidator{
			UniqueFilename: "SHA256SUMS.txt",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return &Updater{
		config:         cfg,
		currentVersion: cleanVersion(version),
		selfUpdater:    su,
		logger:         logging.Component(logger, "updater"),
	}, nil
}

// CurrentVersion returns the running version without a "v" prefix
func (u *Updater) CurrentVersion() string {
	return u.currentVersion
}

// ShouldCheckForUpdate determines if an update check should be performed
// based on config settings and last check time
func (u *Updater) ShouldCheckForUpdate() bool {
	return shouldCheck(u.config.Update, u.Repository(), u.currentVersion, time.Now())
}

// Repository returns the release repository, "" when none is configured
func (u *Updater) Repository() string {
	return ReleaseRepository(u.config.Update)
}

// ReleaseRepository returns the configured repository, falling back to GitHubRepo
func ReleaseRepository(cfg config.UpdateConfig) string {
	if repo := strings.TrimSpace(cfg.Repository); repo != "" {
		return repo
	}
	return GitHubRepo
}

func shouldCheck(cfg config.UpdateConfig, repo, currentVersion string, now time.Time) bool {
	if !cfg.Enabled || !cfg.AutoCheck || repo == "" {
		return false
	}

	// Development builds never nag
	if currentVersion == "" || currentVersion == "dev" {
		return false
	}

	// Rate limit: check at most once per CheckInterval
	return now.Sub(cfg.LastCheck) >= CheckInterval
}

// CheckForUpdate queries GitHub for the latest release
// Returns nil if no update available or if user skipped this version
// Failed checks count towards the rate limit too.
func (u *Updater) CheckForUpdate(ctx context.Context) (*selfupdate.Release, error) {
	repo := u.Repository()
	if repo == "" {
		return nil, ErrNoRepository
	}

	u.config.Update.LastCheck = time.Now()
	if err := u.config.Save(); err != nil {
		u.logger.Warn("failed to save config", "err", err)
	}

	latest, found, err := u.selfUpdater.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}

	if !found {
		return nil, fmt.Errorf("no releases found in %s", repo)
	}

	if latest.LessOrEqual(u.currentVersion) {
		return nil, nil // Already up to date
	}

	// Check if user explicitly skipped this version
	if u.config.Update.SkipVersion == latest.Version() {
		u.logger.Debug("skipping release", "version", latest.Version())
		return nil, nil
	}

	return latest, nil
}

// PerformUpdate downloads and installs the update
// Creates a backup and rolls back on failure
func (u *Updater) PerformUpdate(ctx context.Context, release *selfupdate.Release) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to determine executable path: %w", err)
	}

	// Create backup before attempting update
	backup := exe + ".backup"
	if err := copyFile(exe, backup); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, release.AssetURL, release.AssetName, exe); err != nil {
		if rollbackErr := os.Rename(backup, exe); rollbackErr != nil {
			return fmt.Errorf("update failed and rollback failed: update error: %w, rollback error: %v", err, rollbackErr)
		}
		return fmt.Errorf("update failed (rolled back): %w", err)
	}

	if err := os.Remove(backup); err != nil {
		u.logger.Warn("failed to remove backup", "path", backup, "err", err)
	}

	u.logger.Info("updated", "version", release.Version())
	return nil
}

// SkipVersion marks a version as skipped by the user
func (u *Updater) SkipVersion(version string) error {
	u.config.Update.SkipVersion = version
	return u.config.Save()
}

// copyFile creates a copy of the file for backup purposes
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o755)
}

// cleanVersion removes 'v' prefix if present for consistent comparison
func cleanVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}
