package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tankobon/internal/buildinfo"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const releaseURL = "https://api.github.com/repos/tankobon/tankobon/releases/latest"

type release struct {
	TagName     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
}

// latestRelease asks the release api for the newest tag. Some apis
// answer 500 instead of 404 for repos without releases; both count as
// no release.
func latestRelease(ctx context.Context, apiURL string) (*release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}

	client := http.Client{
		Timeout: 10 * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching latest release")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusInternalServerError:
		return nil, nil
	default:
		return nil, errors.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, errors.Wrap(err, "decoding release")
	}

	return &rel, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version info",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Println("Version:", buildinfo.Version)
		fmt.Println("Commit:", buildinfo.Commit)
		fmt.Println("Build date:", buildinfo.Date)

		if buildinfo.Version == "dev" {
			return
		}

		// the update check is best effort; a dev build or an
		// unreachable release api never fails the command
		rel, err := latestRelease(cmd.Context(), releaseURL)
		if err != nil || rel == nil {
			return
		}

		if rel.TagName != buildinfo.Version {
			fmt.Println()
			fmt.Println("Update available:", buildinfo.Version, "->", rel.TagName)
			fmt.Println("Published at:", rel.PublishedAt.Format(time.RFC3339))
		}
	},
}
