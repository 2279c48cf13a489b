// Package version parses dotted version strings such as Bazel release
// versions ("0.10.0") into comparable components.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed major.minor.patch version. Minor and Patch default to
// zero when the source string omits them.
type Version struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Patch int `json:"patch" yaml:"patch"`
}

// String renders the version in major.minor.patch form.
func (v *Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 when v is less than, equal to, or greater
// than other.
func (v *Version) Compare(other *Version) int {
	pairs := [][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// ParseVersion parses a dotted version string. A leading "v" and anything
// after the first "-" (pre-release or vendor suffixes like
// "5.15.0-1028-aws") are ignored. At most three numeric components are
// accepted.
func ParseVersion(s string) (*Version, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "v")
	if i := strings.Index(trimmed, "-"); i >= 0 {
		// a dash directly after a dot separator means a negative component
		if i == 0 || trimmed[i-1] == '.' {
			return nil, fmt.Errorf("version %q cannot contain negative numbers", s)
		}
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return nil, fmt.Errorf("empty version string")
	}

	parts := strings.Split(trimmed, ".")
	if len(parts) > 3 {
		return nil, fmt.Errorf("version %q has more than three components", s)
	}

	nums := make([]int, 0, 3)
	for _, p := range parts {
		if strings.HasPrefix(p, "-") {
			return nil, fmt.Errorf("version %q cannot contain negative numbers", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("version %q has non-numeric component %q", s, p)
		}
		if n < 0 {
			return nil, fmt.Errorf("version %q cannot contain negative numbers", s)
		}
		nums = append(nums, n)
	}

	v := &Version{Major: nums[0]}
	if len(nums) > 1 {
		v.Minor = nums[1]
	}
	if len(nums) > 2 {
		v.Patch = nums[2]
	}
	return v, nil
}
