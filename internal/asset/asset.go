// Package asset models the build output files handed to the publishing
// pipeline and partitions them into the kinds the publish phases operate on.
package asset

import (
	"path"
	"strings"
)

// Kind identifies the publishing category of an output file.
type Kind string

const (
	// KindEntry is a compiled entry-point script declared by the build.
	KindEntry Kind = "entry"

	// KindStyle is a stylesheet (.css) output.
	KindStyle Kind = "style"

	// KindDocument is a markup document (.html/.htm) output.
	KindDocument Kind = "document"

	// KindResource is any other publishable output (images, fonts, chunks).
	KindResource Kind = "resource"
)

// String returns the string representation of the kind.
func (k Kind) String() string { return string(k) }

// Asset is a single build output file. Name is the output-relative path and
// is unique within one build. The pipeline treats Data as read-only for the
// duration of a publish cycle; rewritten content is produced as new slices.
type Asset struct {
	Name string
	Data []byte
}

// Ext returns the extension of the asset's final path element, including
// the dot. Dots in directory names do not count.
func (a Asset) Ext() string {
	return path.Ext(a.Name)
}

// IsSourceMap reports whether the asset is a debug source map. Source maps
// are never published.
func (a Asset) IsSourceMap() bool {
	return strings.HasSuffix(a.Name, ".map")
}
