package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// Reserved directory names directly under the uploads root. Document base
// directories live alongside them, keyed by sanitized base name.
const (
	versionsDir = "versions"
	stagingDir  = "staging"
	previewsDir = "previews"
)

var (
	unsafeChars    = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	versionDirRe   = regexp.MustCompile(`^Versao (\d+) \(`)
)

// SanitizeName makes a filename safe for the on-disk layout: path-unsafe
// characters are stripped, whitespace runs collapse to one space, and
// trailing dots/spaces are trimmed.
func SanitizeName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ". ")
	return s
}

// BaseName returns the sanitized, extension-stripped base of a filename.
// It names the document's directory under the uploads root.
func BaseName(fileName string) string {
	base := strings.TrimSuffix(fileName, path.Ext(fileName))
	return SanitizeName(base)
}

// SeriesKey derives the normalized identifier that groups uploads
// representing versions of the same logical document: the sanitized base
// name, case-folded.
func SeriesKey(fileName string) string {
	return strings.ToLower(BaseName(fileName))
}

// VersionDirName builds the on-disk version directory name. The spelling
// is part of the layout contract and must not change.
func VersionDirName(version int, at time.Time) string {
	return fmt.Sprintf("Versao %d (%s)", version, at.Format("02.01.2006"))
}

// VersionLabel builds the human-readable version label shown in history
// listings.
func VersionLabel(version int, at time.Time) string {
	return fmt.Sprintf("Versão %d (%s)", version, at.Format("02.01.2006"))
}

// parseVersionDir extracts the version number from a version directory
// name, returning 0 when the name does not match the layout.
func parseVersionDir(name string) int {
	m := versionDirRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	var n int
	fmt.Sscanf(m[1], "%d", &n)
	return n
}

// PreviewFileName builds the preview cache filename for a document version.
func PreviewFileName(documentID string, version int, ext string) string {
	return fmt.Sprintf("%s_v%d%s", documentID, version, ext)
}
