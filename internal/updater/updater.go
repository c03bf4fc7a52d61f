// Package updater self-updates the binary from GitHub releases.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/smazurov/lumenode/internal/logging"
	"github.com/smazurov/lumenode/internal/version"
)

// Release describes the latest published release relative to this build.
type Release struct {
	CurrentVersion string
	LatestVersion  string
	ReleaseNotes   string
	URL            string
	PublishedAt    time.Time
	Available      bool

	release *selfupdate.Release
}

// Updater checks for and applies releases from one GitHub repository.
type Updater struct {
	repository selfupdate.Repository
	updater    *selfupdate.Updater
	logger     *slog.Logger
}

// New creates an Updater for the given "owner/repo" slug.
func New(repository string, prerelease bool) (*Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("creating GitHub source: %w", err)
	}
	u, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("creating updater: %w", err)
	}
	return &Updater{
		repository: selfupdate.ParseSlug(repository),
		updater:    u,
		logger:     logging.GetLogger("updater"),
	}, nil
}

// Check queries the repository for the latest release and compares it
// against the running version. Dev builds always count as outdated.
func (u *Updater) Check(ctx context.Context) (*Release, error) {
	current := version.Version

	release, found, err := u.updater.DetectLatest(ctx, u.repository)
	if err != nil {
		return nil, fmt.Errorf("checking for updates: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("repository has no releases")
	}

	available := current == "dev" || release.GreaterThan(current)
	return &Release{
		CurrentVersion: current,
		LatestVersion:  release.Version(),
		ReleaseNotes:   release.ReleaseNotes,
		URL:            release.URL,
		PublishedAt:    release.PublishedAt,
		Available:      available,
		release:        release,
	}, nil
}

// Apply replaces the running binary with the release found by Check.
func (u *Updater) Apply(ctx context.Context, r *Release) error {
	if r == nil || r.release == nil {
		return fmt.Errorf("no release to apply")
	}
	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	u.logger.Info("Applying update", "from", r.CurrentVersion, "to", r.LatestVersion)
	if err := u.updater.UpdateTo(ctx, r.release, exe); err != nil {
		return fmt.Errorf("applying update: %w", err)
	}
	return nil
}
