// Package rewrite contains the pure text transformations the publish
// pipeline applies to build outputs: base-path neutralization, stylesheet
// URL substitution, manifest injection, and document interpolation. None of
// them perform I/O; callers decide what to do with the rewritten bytes.
package rewrite

import "regexp"

// Compiled entry scripts embed a single runtime-resolved base path used to
// locate code-split chunks. Once assets live at arbitrary remote locations
// that shared prefix is meaningless: chunks are resolved individually via
// the manifest instead. These patterns target the known compiler-emitted
// assignments; the rewrite must run before minification restructures them.
var basePathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`__webpack_require__\.p\s*=\s*[^;\n]+;`),
	regexp.MustCompile(`__PUBLIC_PATH__\s*=\s*"[^"\n]*";`),
}

var basePathReplacements = []string{
	`__webpack_require__.p = "";`,
	`__PUBLIC_PATH__ = "";`,
}

// NeutralizeBasePath replaces an entry script's base-path defining
// expression with an empty base path. It returns the rewritten script and
// whether anything matched; scripts without the token pass through
// untouched.
func NeutralizeBasePath(script []byte) ([]byte, bool) {
	changed := false
	out := script
	for i, pat := range basePathPatterns {
		if !pat.Match(out) {
			continue
		}
		out = pat.ReplaceAll(out, []byte(basePathReplacements[i]))
		changed = true
	}
	return out, changed
}
