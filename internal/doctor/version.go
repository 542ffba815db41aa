package doctor

import (
	"fmt"
	"regexp"
	"strings"
)

// versionParts is how many dotted components take part in a comparison.
const versionParts = 4

var (
	awsCLIVersionRe = regexp.MustCompile(`aws-cli/(\d+(?:\.\d+)*)`)
	anyVersionRe    = regexp.MustCompile(`(\d+(?:\.\d+)+)`)
)

// ParseCLIVersion extracts the version from "aws --version" output, e.g.
// "aws-cli/1.16.299 Python/3.8.0 Darwin/19.0.0 botocore/1.13.35".
func ParseCLIVersion(output string) (string, error) {
	if m := awsCLIVersionRe.FindStringSubmatch(output); m != nil {
		return m[1], nil
	}

	// Some builds print only the bare version on the first line.
	first, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	if m := anyVersionRe.FindStringSubmatch(first); m != nil {
		return m[1], nil
	}

	return "", fmt.Errorf("no version found in %q", strings.TrimSpace(output))
}

// normalizeVersion keeps the first four dotted parts, pads missing parts with
// zero, and left-pads each part to three digits so that versions compare
// correctly as plain strings.
func normalizeVersion(v string) string {
	parts := strings.Split(strings.TrimSpace(v), ".")
	out := make([]string, versionParts)
	for i := range out {
		p := "0"
		if i < len(parts) && parts[i] != "" {
			p = parts[i]
		}
		if len(p) < 3 {
			p = strings.Repeat("0", 3-len(p)) + p
		}
		out[i] = p
	}
	return strings.Join(out, "")
}

// CompareVersions returns -1, 0 or 1 as a is older than, equal to, or newer
// than b.
func CompareVersions(a, b string) int {
	return strings.Compare(normalizeVersion(a), normalizeVersion(b))
}

// VersionAtLeast reports whether v is min or newer.
func VersionAtLeast(v, min string) bool {
	return CompareVersions(v, min) >= 0
}
