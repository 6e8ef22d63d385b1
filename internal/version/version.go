// Package version reports the build version and checks for newer releases.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-version"
)

// AppVersion is set at build time with -ldflags "-X .../internal/version.AppVersion=v1.2.3".
var AppVersion = "v0.0.0"

const DefaultReleaseURL = "https://api.github.com/repos/nulzo/prism-fanout/releases/latest"

type GitHubRelease struct {
	TagName string `json:"tag_name"`
}

// Update describes a newer release.
type Update struct {
	Current string
	Latest  string
}

// CheckForUpdates asks releaseURL for the latest release tag. It returns nil
// when current is up to date.
func CheckForUpdates(ctx context.Context, releaseURL, current string) (*Update, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release lookup returned %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, err
	}

	cur, err := version.NewVersion(current)
	if err != nil {
		return nil, fmt.Errorf("current version %q: %w", current, err)
	}
	latest, err := version.NewVersion(release.TagName)
	if err != nil {
		return nil, fmt.Errorf("latest version %q: %w", release.TagName, err)
	}

	if cur.LessThan(latest) {
		return &Update{Current: current, Latest: release.TagName}, nil
	}
	return nil, nil
}
