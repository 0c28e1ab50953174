package slug

import (
	"regexp"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename maps every non-alphanumeric rune of name to an underscore.
func Filename(name string) string {
	s := nonAlphaNum.ReplaceAllString(strings.TrimSpace(name), "_")
	if s == "" {
		return "untitled"
	}
	return s
}

// ExportFilename is the file name used for a single-session export.
func ExportFilename(sessionName string) string {
	return Filename(sessionName) + "_session.json"
}
