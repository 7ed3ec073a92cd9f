package asset

import "testing"

func TestClassifyPartitionsByKind(t *testing.T) {
	assets := []Asset{
		{Name: "main.js"},
		{Name: "main.js.map"},
		{Name: "app.css"},
		{Name: "app.css.map"},
		{Name: "index.html"},
		{Name: "logo.png"},
		{Name: "chunk.1a2b.js"},
	}

	c := Classify(assets, []string{"main.js"})

	if len(c.Entries) != 1 || c.Entries[0].Name != "main.js" {
		t.Errorf("Entries = %v, want [main.js]", c.Entries)
	}
	if len(c.Styles) != 1 || c.Styles[0].Name != "app.css" {
		t.Errorf("Styles = %v, want [app.css]", c.Styles)
	}
	if len(c.Documents) != 1 || c.Documents[0].Name != "index.html" {
		t.Errorf("Documents = %v, want [index.html]", c.Documents)
	}
	// Non-entry scripts count as plain resources (code-split chunks).
	if len(c.Resources) != 2 {
		t.Errorf("Resources = %v, want logo.png and chunk.1a2b.js", c.Resources)
	}
	if c.Total() != 5 {
		t.Errorf("Total = %d, want 5 (source maps excluded)", c.Total())
	}
}

func TestClassifyEntryWinsOverSuffix(t *testing.T) {
	assets := []Asset{
		{Name: "styleguide.css"},
		{Name: "landing.html"},
	}

	c := Classify(assets, []string{"styleguide.css", "landing.html"})

	if len(c.Entries) != 2 {
		t.Fatalf("Entries = %v, want both declared entries", c.Entries)
	}
	if len(c.Styles) != 0 || len(c.Documents) != 0 {
		t.Errorf("entry assets were reclassified: styles=%v documents=%v", c.Styles, c.Documents)
	}
}

func TestClassifyExcludesSourceMaps(t *testing.T) {
	c := Classify([]Asset{{Name: "vendor.js.map"}}, nil)
	if c.Total() != 0 {
		t.Errorf("source map was classified: %+v", c)
	}
}

func TestKindsLookup(t *testing.T) {
	c := Classify([]Asset{
		{Name: "main.js"},
		{Name: "app.css"},
		{Name: "logo.png"},
	}, []string{"main.js"})

	kinds := c.Kinds()
	want := map[string]Kind{
		"main.js":  KindEntry,
		"app.css":  KindStyle,
		"logo.png": KindResource,
	}
	for name, kind := range want {
		if kinds[name] != kind {
			t.Errorf("kinds[%q] = %v, want %v", name, kinds[name], kind)
		}
	}
}
