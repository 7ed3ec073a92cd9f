package rewrite

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// documentRefAttrs lists the tag attributes through which documents load
// other build outputs.
var documentRefAttrs = map[string][]string{
	"script": {"src"},
	"link":   {"href"},
	"img":    {"src", "srcset"},
	"source": {"src", "srcset"},
}

// Document rewrites a markup document's references to published outputs
// (script src, link href, img/source src and srcset) with their remote
// locations, and embeds the manifest for runtime use when manifestJSON is
// non-nil. References without a UrlMap entry stay as they are. Substitution
// is textual, so bytes outside the rewritten attributes are untouched.
//
// Documents themselves are never uploaded; callers only write the result
// back to the local output.
func Document(doc []byte, docName string, urls map[string]string, manifestJSON []byte) []byte {
	out := doc

	replacements := make(map[string]string)
	for _, ref := range extractDocumentRefs(doc) {
		var rewritten string
		if ref.attr == "srcset" {
			rewritten = rewriteSrcset(ref.value, docName, urls)
		} else {
			rewritten = rewriteSingleRef(ref.value, docName, urls)
		}
		if rewritten == ref.value {
			continue
		}
		replacements[ref.attr+`="`+ref.value+`"`] = ref.attr + `="` + rewritten + `"`
		replacements[ref.attr+`='`+ref.value+`'`] = ref.attr + `='` + rewritten + `'`
	}
	for old, repl := range replacements {
		out = bytes.ReplaceAll(out, []byte(old), []byte(repl))
	}

	if manifestJSON != nil {
		out = embedManifestScript(out, manifestJSON)
	}
	return out
}

// rewriteSingleRef resolves one attribute reference against the UrlMap,
// returning the value unchanged when it is external or unknown.
func rewriteSingleRef(value, docName string, urls map[string]string) string {
	if isExternalRef(value) {
		return value
	}
	name, suffix := splitRefSuffix(value)
	remote, ok := urls[resolveAgainstSheet(name, docName)]
	if !ok {
		return value
	}
	return remote + suffix
}

// rewriteSrcset rewrites each candidate URL in a srcset value, keeping
// width/density descriptors intact. Candidates whose URL is external or
// unknown pass through.
func rewriteSrcset(value, docName string, urls map[string]string) string {
	candidates := strings.Split(value, ",")
	changed := false
	for i, cand := range candidates {
		fields := strings.Fields(cand)
		if len(fields) == 0 {
			continue
		}
		rewritten := rewriteSingleRef(fields[0], docName, urls)
		if rewritten == fields[0] {
			continue
		}
		fields[0] = rewritten
		candidates[i] = strings.Join(fields, " ")
		changed = true
	}
	if !changed {
		return value
	}
	for i, cand := range candidates {
		candidates[i] = strings.TrimSpace(cand)
	}
	return strings.Join(candidates, ", ")
}

type documentRef struct {
	attr  string
	value string
}

// extractDocumentRefs parses the document and collects the attribute values
// that reference other files. Parse failures yield no refs rather than an
// error; a document the parser cannot handle is left alone.
func extractDocumentRefs(doc []byte) []documentRef {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil
	}

	var refs []documentRef
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attrs, ok := documentRefAttrs[n.Data]; ok {
				for _, a := range n.Attr {
					for _, want := range attrs {
						if a.Key == want && a.Val != "" {
							refs = append(refs, documentRef{attr: a.Key, value: a.Val})
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return refs
}

// embedManifestScript injects the manifest lookup table ahead of any script
// that might consume it: before </head> when present, otherwise before
// </body>, otherwise appended.
func embedManifestScript(doc, manifestJSON []byte) []byte {
	script := "<script>window." + ManifestGlobal + "=" + string(manifestJSON) + ";</script>"

	for _, closer := range []string{"</head>", "</body>"} {
		idx := indexASCIIFold(doc, closer)
		if idx < 0 {
			continue
		}
		out := make([]byte, 0, len(doc)+len(script))
		out = append(out, doc[:idx]...)
		out = append(out, script...)
		out = append(out, doc[idx:]...)
		return out
	}
	return append(doc, script...)
}

// indexASCIIFold finds sub in data ignoring ASCII case, scanning the raw
// bytes so the returned offset is valid for data itself. Lowercasing the
// whole document first would shift offsets whenever a non-ASCII character
// changes byte length under case folding.
func indexASCIIFold(data []byte, sub string) int {
	if len(sub) == 0 || len(data) < len(sub) {
		return -1
	}
	for i := 0; i+len(sub) <= len(data); i++ {
		if asciiFoldEqual(data[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

func asciiFoldEqual(b []byte, s string) bool {
	for i := 0; i < len(s); i++ {
		c, d := b[i], s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if 'A' <= d && d <= 'Z' {
			d += 'a' - 'A'
		}
		if c != d {
			return false
		}
	}
	return true
}
