// Package version parses and checks the configuration document format
// version.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Current is the configuration format version this build reads.
const Current = "1.0"

// ErrUnsupported is returned by Check for versions this build cannot read.
var ErrUnsupported = errors.New("unsupported version")

// FormatVersion represents a parsed "major.minor" format version.
type FormatVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (FormatVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return FormatVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return FormatVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return FormatVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return FormatVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) FormatVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as "major.minor".
func (v FormatVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v FormatVersion) Compatible(other FormatVersion) bool {
	return v.Major == other.Major
}

// Readable reports whether a reader at version v understands a document
// written at other: same major, and no newer minor.
func (v FormatVersion) Readable(other FormatVersion) bool {
	return v.Compatible(other) && other.Minor <= v.Minor
}

// Check validates a document's declared version against Current. An empty
// string means Current.
func Check(s string) error {
	if s == "" {
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	if !MustParse(Current).Readable(v) {
		return fmt.Errorf("%w: %s (this build reads %s)", ErrUnsupported, v, Current)
	}
	return nil
}
