package rewrite

import (
	"path"
	"regexp"
	"strings"
)

var cssURLPattern = regexp.MustCompile(`url\(\s*(['"]?)([^'")]+)(['"]?)\s*\)`)

// StylesheetURLs rewrites a stylesheet's url(...) references to other build
// outputs with their remote locations. References are resolved relative to
// the sheet's own output path before lookup. References without a UrlMap
// entry are left unchanged: they may be data URLs, external absolute URLs,
// or assets that stayed local.
func StylesheetURLs(css []byte, sheetName string, urls map[string]string) []byte {
	if len(urls) == 0 {
		return css
	}

	return cssURLPattern.ReplaceAllFunc(css, func(match []byte) []byte {
		groups := cssURLPattern.FindSubmatch(match)
		quote := string(groups[1])
		ref := string(groups[2])

		if isExternalRef(ref) {
			return match
		}

		name, suffix := splitRefSuffix(ref)
		resolved := resolveAgainstSheet(name, sheetName)
		remote, ok := urls[resolved]
		if !ok {
			return match
		}
		return []byte("url(" + quote + remote + suffix + quote + ")")
	})
}

// isExternalRef reports whether a reference cannot point at a build output:
// data URLs, fragment-only references, absolute URLs, protocol-relative URLs.
func isExternalRef(ref string) bool {
	return ref == "" ||
		strings.HasPrefix(ref, "data:") ||
		strings.HasPrefix(ref, "#") ||
		strings.HasPrefix(ref, "//") ||
		strings.Contains(ref, "://")
}

// splitRefSuffix separates a reference's path from its query/fragment
// suffix, which is re-appended after substitution (fonts commonly carry
// `?#iefix`-style suffixes).
func splitRefSuffix(ref string) (string, string) {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}

// resolveAgainstSheet turns a reference found inside sheetName into an
// output-relative asset name. A leading slash means output-root-relative;
// anything else resolves against the sheet's directory.
func resolveAgainstSheet(ref, sheetName string) string {
	if strings.HasPrefix(ref, "/") {
		return strings.TrimPrefix(path.Clean(ref), "/")
	}
	return path.Join(path.Dir(sheetName), ref)
}
