// Package assets holds files embedded into the plantcheck binary.
package assets

import "embed"

// Templates contains starter files written out by `plantcheck init`.
//
//go:embed templates
var Templates embed.FS
