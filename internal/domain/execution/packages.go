package execution

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPackage is returned for requirement strings that cannot be
// passed to the package manager safely.
var ErrInvalidPackage = errors.New("invalid package name")

// InstallResult captures the outcome of a package installation.
type InstallResult struct {
	Package  string
	OK       bool
	Output   string
	ExitCode int64
}

// requirementPattern accepts a project name with optional extras and a single
// version clause, e.g. "requests", "rich[jupyter]", "numpy==2.1.0".
var requirementPattern = regexp.MustCompile(
	`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?` +
		`(?:\[[A-Za-z0-9._-]+(?:,[A-Za-z0-9._-]+)*\])?` +
		`(?:(?:==|>=|<=|~=|!=|>|<)[A-Za-z0-9.*+!_-]+)?$`,
)

const maxPackageNameLength = 200

// ValidatePackageName normalises and validates a requirement string.
func ValidatePackageName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPackage)
	}
	if len(name) > maxPackageNameLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidPackage, maxPackageNameLength)
	}
	if !requirementPattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPackage, name)
	}
	return name, nil
}
