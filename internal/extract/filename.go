package extract

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	separatorRe  = regexp.MustCompile(`[_\-.+]+`)
	digitRunRe   = regexp.MustCompile(`\d+`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// baseName returns the filename without directory or extension.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// normalizeFilename turns separator characters into spaces so the field
// grammar can run over a filename as if it were a line of text.
func normalizeFilename(path string) string {
	name := separatorRe.ReplaceAllString(baseName(path), " ")
	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// CleanFilename strips separators and digits from a filename, leaving a
// plausible human-readable title. Used as the last-resort title fallback.
func CleanFilename(path string) string {
	name := separatorRe.ReplaceAllString(baseName(path), " ")
	name = digitRunRe.ReplaceAllString(name, "")
	name = multiSpaceRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return baseName(path)
	}
	return name
}

// identifierFromFilename finds a 10- or 13-digit numeric run in the filename.
func identifierFromFilename(path string) string {
	for _, run := range digitRunRe.FindAllString(baseName(path), -1) {
		if len(run) == 10 || len(run) == 13 {
			return run
		}
	}
	return ""
}
