package sanitize

import (
	"regexp"
	"strings"
)

var illegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Filename removes characters that are problematic in file names.
func Filename(title string) string {
	title = strings.Trim(title, " .")

	return illegalChars.ReplaceAllString(title, "")
}
