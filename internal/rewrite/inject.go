package rewrite

// ManifestGlobal is the name under which runtime code finds the asset
// manifest lookup table.
const ManifestGlobal = "__ASSET_MANIFEST__"

// InjectManifest appends the serialized manifest to an entry script, giving
// runtime loaders a name→remote-location table for chunks they did not know
// statically. The snippet works in both window and worker contexts.
func InjectManifest(script, manifestJSON []byte) []byte {
	snippet := "\n;(function(g){g." + ManifestGlobal + "=" + string(manifestJSON) +
		";})(typeof self!==\"undefined\"?self:this);\n"
	out := make([]byte, 0, len(script)+len(snippet))
	out = append(out, script...)
	out = append(out, snippet...)
	return out
}
