package clients

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ErrUnsupportedVersion is returned when a client version is missing, malformed or outside the constraint.
var ErrUnsupportedVersion = errors.New("unsupported client version")

// VersionGate admits clients whose declared version satisfies a semver constraint.
type VersionGate struct {
	constraint *semver.Constraints
	raw        string
}

// NewVersionGate parses constraint, e.g. ">= 1.0.0".
func NewVersionGate(constraint string) (*VersionGate, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	return &VersionGate{constraint: c, raw: constraint}, nil
}

// Check reports whether version is admitted. Short forms like "1.0" are accepted.
func (g *VersionGate) Check(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}
	if !g.constraint.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, version, g.raw)
	}
	return nil
}
