package cvtrack

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a computer vision library release number in major.minor.patch
// form
type Version struct {
	Major int
	Minor int
	Patch int
}

// V is a shorthand constructor for a Version
func V(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// ParseVersion parses version strings as reported by OpenCV, such as "4.9.0",
// "3.4" or "4.10.0-dev".  Any suffix following the numeric components is
// ignored.
func ParseVersion(s string) (Version, error) {

	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "v")

	// drop pre-release or build suffix
	if idx := strings.IndexAny(s, "-+ "); idx >= 0 {
		s = s[:idx]
	}

	parts := strings.Split(s, ".")

	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("%w: invalid version string %q",
			ErrInvalidArgument, s)
	}

	nums := [3]int{}

	for i, part := range parts {
		n, err := strconv.Atoi(part)

		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: invalid version component %q",
				ErrInvalidArgument, part)
		}

		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParseVersion is like ParseVersion but panics on error
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)

	if err != nil {
		panic(err)
	}

	return v
}

// Compare returns -1, 0 or +1 depending on whether v is lower than, equal to
// or higher than o.  Versions are ordered lexicographically on
// (major, minor, patch).
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpInt(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpInt(v.Minor, o.Minor)
	default:
		return cmpInt(v.Patch, o.Patch)
	}
}

// AtLeast reports whether v >= o
func (v Version) AtLeast(o Version) bool {
	return v.Compare(o) >= 0
}

// GreaterEqual reports whether v >= major.minor.patch
func (v Version) GreaterEqual(major, minor, patch int) bool {
	return v.AtLeast(V(major, minor, patch))
}

// Equal reports whether v is exactly major.minor.patch
func (v Version) Equal(major, minor, patch int) bool {
	return v == V(major, minor, patch)
}

// IsZero reports whether the version is unset
func (v Version) IsZero() bool {
	return v == Version{}
}

// String returns the version in dotted form
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
