package rewrite

import "testing"

func TestStylesheetURLsRewritesKnownReference(t *testing.T) {
	css := []byte(`.logo { background: url(logo.png); }`)
	urls := map[string]string{"logo.png": "https://cdn.example.com/logo.png"}

	out := StylesheetURLs(css, "app.css", urls)
	want := `.logo { background: url(https://cdn.example.com/logo.png); }`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestStylesheetURLsPreservesQuotes(t *testing.T) {
	css := []byte(`@font-face { src: url("fonts/body.woff2"); }
.a { background: url('logo.png'); }`)
	urls := map[string]string{
		"fonts/body.woff2": "https://cdn.example.com/fonts/body.woff2",
		"logo.png":         "https://cdn.example.com/logo.png",
	}

	out := StylesheetURLs(css, "app.css", urls)
	want := `@font-face { src: url("https://cdn.example.com/fonts/body.woff2"); }
.a { background: url('https://cdn.example.com/logo.png'); }`
	if string(out) != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestStylesheetURLsResolvesAgainstSheetDirectory(t *testing.T) {
	css := []byte(`.a { background: url(../img/logo.png); }`)
	urls := map[string]string{"img/logo.png": "https://cdn.example.com/img/logo.png"}

	out := StylesheetURLs(css, "css/app.css", urls)
	if string(out) != `.a { background: url(https://cdn.example.com/img/logo.png); }` {
		t.Errorf("relative reference not resolved: %s", out)
	}
}

func TestStylesheetURLsRootRelativeReference(t *testing.T) {
	css := []byte(`.a { background: url(/img/logo.png); }`)
	urls := map[string]string{"img/logo.png": "https://cdn.example.com/img/logo.png"}

	out := StylesheetURLs(css, "css/app.css", urls)
	if string(out) != `.a { background: url(https://cdn.example.com/img/logo.png); }` {
		t.Errorf("root-relative reference not resolved: %s", out)
	}
}

func TestStylesheetURLsKeepsQueryAndFragmentSuffix(t *testing.T) {
	css := []byte(`@font-face { src: url(body.eot?#iefix); }`)
	urls := map[string]string{"body.eot": "https://cdn.example.com/body.eot"}

	out := StylesheetURLs(css, "app.css", urls)
	if string(out) != `@font-face { src: url(https://cdn.example.com/body.eot?#iefix); }` {
		t.Errorf("suffix lost: %s", out)
	}
}

func TestStylesheetURLsLeavesExternalReferences(t *testing.T) {
	cases := []string{
		`.a { background: url(data:image/png;base64,iVBOR); }`,
		`.b { background: url(https://other.example.com/x.png); }`,
		`.c { background: url(//other.example.com/x.png); }`,
		`.d { mask: url(#clip); }`,
	}
	urls := map[string]string{"x.png": "https://cdn.example.com/x.png"}

	for _, css := range cases {
		out := StylesheetURLs([]byte(css), "app.css", urls)
		if string(out) != css {
			t.Errorf("external reference rewritten: %s -> %s", css, out)
		}
	}
}

func TestStylesheetURLsUnknownReferenceUnchanged(t *testing.T) {
	css := []byte(`.a { background: url(missing.png); }`)
	out := StylesheetURLs(css, "app.css", map[string]string{"other.png": "https://cdn/x"})
	if string(out) != string(css) {
		t.Errorf("unknown reference rewritten: %s", out)
	}
}
