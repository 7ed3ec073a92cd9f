package asset

import "strings"

// Classification is the disjoint partition of one build's output set.
// An asset appears in exactly one slice; source maps appear in none.
type Classification struct {
	Entries   []Asset
	Styles    []Asset
	Documents []Asset
	Resources []Asset
}

// Kinds returns the classification as a map from asset name to kind.
func (c *Classification) Kinds() map[string]Kind {
	kinds := make(map[string]Kind)
	for _, a := range c.Entries {
		kinds[a.Name] = KindEntry
	}
	for _, a := range c.Styles {
		kinds[a.Name] = KindStyle
	}
	for _, a := range c.Documents {
		kinds[a.Name] = KindDocument
	}
	for _, a := range c.Resources {
		kinds[a.Name] = KindResource
	}
	return kinds
}

// Total returns the number of classified assets.
func (c *Classification) Total() int {
	return len(c.Entries) + len(c.Styles) + len(c.Documents) + len(c.Resources)
}

// Classify partitions assets into the four publishing kinds. entryNames are
// the output names declared by the build's entry points; an asset named
// there is always an entry, even when its suffix would otherwise classify
// it as a style or document. Source maps are dropped entirely.
//
// Classify is a pure partition: it does not touch the filesystem and does
// not reorder assets within a kind.
func Classify(assets []Asset, entryNames []string) *Classification {
	entrySet := make(map[string]bool, len(entryNames))
	for _, name := range entryNames {
		entrySet[name] = true
	}

	c := &Classification{}
	for _, a := range assets {
		if a.IsSourceMap() {
			continue
		}
		switch {
		case entrySet[a.Name]:
			c.Entries = append(c.Entries, a)
		case isStyleName(a.Name):
			c.Styles = append(c.Styles, a)
		case isDocumentName(a.Name):
			c.Documents = append(c.Documents, a)
		default:
			c.Resources = append(c.Resources, a)
		}
	}
	return c
}

func isStyleName(name string) bool {
	return strings.HasSuffix(name, ".css")
}

func isDocumentName(name string) bool {
	return strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm")
}
