package grasp

import (
	"regexp"
	"strings"
)

// versionRe is the version selector grammar: major.minor with an optional
// dialect qualifier. Trailing text after a match is stripped.
var versionRe = regexp.MustCompile(`^\d+\.\d+(?:\.experimental|-cost|-rule)?`)

// CheckVersion validates a version selector against the selector grammar
// and returns the matched prefix. Input that does not start with a valid
// selector yields an InvalidVersionError.
func CheckVersion(version string) (string, error) {
	matched := versionRe.FindString(strings.TrimSpace(version))
	if matched == "" {
		return "", NewInvalidVersionError(version)
	}
	return matched, nil
}
