package docker

import (
	"fmt"
	"strconv"
	"strings"
)

// LatestTag is the floating tag every build receives.
const LatestTag = "latest"

// Bump selects which version component to raise.
type Bump int

const (
	BumpLatest Bump = iota
	BumpMajor
	BumpMiddle
	BumpMinor
)

var bumpNames = []string{"latest", "major", "middle", "minor"}

func (b Bump) String() string {
	if b < 0 || int(b) >= len(bumpNames) {
		return fmt.Sprintf("Bump(%d)", int(b))
	}
	return bumpNames[b]
}

// Version is a strict major.middle.minor triple.
type Version struct {
	Major, Middle, Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Middle, v.Minor)
}

// ParseVersion accepts exactly three dot-separated non-negative integers.
// Prefixes such as "v" and suffixes such as "-rc1" are rejected.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("version %q: want major.middle.minor", s)
	}
	var n [3]int
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return Version{}, fmt.Errorf("version %q: %q is not a number", s, p)
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("version %q: %w", s, err)
		}
		n[i] = v
	}
	return Version{Major: n[0], Middle: n[1], Minor: n[2]}, nil
}

// Increment returns the tag to push for bump. An empty or unparseable current
// version starts from the first release of each kind: 1.0.0, 0.1.0, 0.0.1.
func Increment(current string, bump Bump) string {
	if bump == BumpLatest {
		return LatestTag
	}
	v, err := ParseVersion(current)
	if err != nil {
		v = Version{}
	}
	switch bump {
	case BumpMajor:
		return Version{Major: v.Major + 1}.String()
	case BumpMiddle:
		return Version{Major: v.Major, Middle: v.Middle + 1}.String()
	default:
		return Version{Major: v.Major, Middle: v.Middle, Minor: v.Minor + 1}.String()
	}
}

// VersionChoices renders the bump menu with the tag each entry would push.
func VersionChoices(current string) []string {
	return []string{
		"1. latest",
		fmt.Sprintf("2. major (%s)", Increment(current, BumpMajor)),
		fmt.Sprintf("3. middle (%s)", Increment(current, BumpMiddle)),
		fmt.Sprintf("4. minor (%s)", Increment(current, BumpMinor)),
	}
}

// pickVersion returns the first strictly parseable tag in the aws text
// output, which separates tags by tabs or spaces.
func pickVersion(output string) string {
	for _, tag := range strings.Fields(output) {
		if _, err := ParseVersion(tag); err == nil {
			return tag
		}
	}
	return ""
}
