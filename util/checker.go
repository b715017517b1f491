package util

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v63/github"
	"golang.org/x/mod/semver"

	"github.com/dixieflatline76/UltimateThumb/config"
)

// CheckForUpdatesResult holds the outcome of the update check.
type CheckForUpdatesResult struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
	ReleaseURL      string
	ReleaseNotes    string
}

// CheckForUpdates polls GitHub for the latest stable release and compares it
// with current. A nil httpClient uses http.DefaultClient. Development builds
// without a semantic version always report an update.
func CheckForUpdates(ctx context.Context, httpClient *http.Client, current string) (*CheckForUpdatesResult, error) {
	client := github.NewClient(httpClient)

	release, _, err := client.Repositories.GetLatestRelease(ctx, config.RepoOwner, config.RepoName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest GitHub release: %w", err)
	}

	current = canonicalVersion(current)
	latest := canonicalVersion(release.GetTagName())

	return &CheckForUpdatesResult{
		UpdateAvailable: semver.Compare(latest, current) > 0,
		CurrentVersion:  current,
		LatestVersion:   latest,
		ReleaseURL:      release.GetHTMLURL(),
		ReleaseNotes:    release.GetBody(),
	}, nil
}

// canonicalVersion prepares a version for semantic version comparison.
func canonicalVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
