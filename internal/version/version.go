package version

import (
	"context"
	"strings"

	"github.com/google/go-github/github"
)

const (
	versionLocal = "local"

	repoOwner = "harry-hov"
	repoName  = "lspfmt"
)

var Version = versionLocal

func getLatestReleaseTag(ctx context.Context) (string, error) {
	latest, _, err := github.
		NewClient(nil).
		Repositories.
		GetLatestRelease(ctx, repoOwner, repoName)
	if err != nil {
		return "", err
	}

	if latest.TagName == nil {
		return "", nil
	}

	return *latest.TagName, nil
}

// GetVersion returns the release version. Local builds report the latest
// published release with a "-local" suffix, or just "local" when offline.
func GetVersion(ctx context.Context) string {
	if Version != versionLocal {
		return Version
	}

	tag, err := getLatestReleaseTag(ctx)
	if err != nil || tag == "" {
		return Version
	}

	return localVersion(tag)
}

func localVersion(tag string) string {
	parts := strings.Split(tag, "-")
	return parts[0] + "-" + versionLocal
}
