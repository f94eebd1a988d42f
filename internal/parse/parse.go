// Package parse extracts platform identifiers from viewer URLs.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	gigaEpisodePattern = regexp.MustCompile(`/episode/(\d+)(?:\.json)?$`)
	fuzViewerPattern   = regexp.MustCompile(`/manga/viewer/(\d+)$`)
	fuzMangaPattern    = regexp.MustCompile(`/manga/(\d+)$`)
)

// GigaEpisodeID extracts the episode id from a viewer or episode-json URL.
func GigaEpisodeID(rawURL string) (string, error) {
	matches := gigaEpisodePattern.FindStringSubmatch(rawURL)
	if len(matches) < 2 {
		return "", fmt.Errorf("no episode id in url: %s", rawURL)
	}
	return matches[1], nil
}

// FuzChapterID extracts the chapter id from a viewer URL.
func FuzChapterID(rawURL string) (uint32, error) {
	matches := fuzViewerPattern.FindStringSubmatch(rawURL)
	if len(matches) < 2 {
		return 0, fmt.Errorf("no chapter id in url: %s", rawURL)
	}

	id, err := strconv.ParseUint(matches[1], 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(id), nil
}

// FuzMangaID extracts the manga id from a manga detail URL. Used with a
// relative chapter position when no direct chapter id is given.
func FuzMangaID(rawURL string) (uint32, error) {
	matches := fuzMangaPattern.FindStringSubmatch(rawURL)
	if len(matches) < 2 {
		return 0, fmt.Errorf("no manga id in url: %s", rawURL)
	}

	id, err := strconv.ParseUint(matches[1], 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(id), nil
}
