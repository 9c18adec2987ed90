package java

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version is a comparable Java language version
type Version struct {
	Major    int
	Minor    int
	Security int
	Raw      string // Version string as given (e.g., "17.0.1+12", "1.8.0_322")
}

var (
	// 1.8, 1.8.0, 1.8.0_322, 1.8.0_322-b06
	legacyVersionRe = regexp.MustCompile(`^1\.(\d+)(?:\.(\d+))?(?:_(\d+))?(?:[-+.].*)?$`)
	// 17, 17.0.1, 17.0.1+12, 11.0.2-ea, 9.0.4.1
	modernVersionRe = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:[-+._].*)?$`)
)

// ParseVersion parses legacy (1.x) and modern (9+) Java version strings.
// Version strings come from arbitrary installs and remote catalogs, so anything
// unrecognized yields false instead of an error.
func ParseVersion(s string) (Version, bool) {
	if m := legacyVersionRe.FindStringSubmatch(s); m != nil {
		major, ok := atoi(m[1])
		if !ok {
			return Version{}, false
		}
		minor, _ := atoi(m[2])
		security, _ := atoi(m[3])
		return Version{Major: major, Minor: minor, Security: security, Raw: s}, true
	}

	m := modernVersionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false
	}
	major, ok := atoi(m[1])
	if !ok || major < 1 {
		return Version{}, false
	}
	minor, _ := atoi(m[2])
	security, _ := atoi(m[3])
	return Version{Major: major, Minor: minor, Security: security, Raw: s}, true
}

// MustParseVersion is like ParseVersion but panics on bad input
func MustParseVersion(s string) Version {
	v, ok := ParseVersion(s)
	if !ok {
		panic(fmt.Sprintf("java: invalid version %q", s))
	}
	return v
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Short returns the major version alone, as used in release API paths
func (v Version) Short() string {
	return strconv.Itoa(v.Major)
}

// Compare orders versions by (major, minor, security). Raw is not considered.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpInt(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpInt(v.Minor, o.Minor)
	default:
		return cmpInt(v.Security, o.Security)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Less reports whether v sorts before o
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// Equal reports whether v and o have the same numeric core
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

func (v Version) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Security)
}
