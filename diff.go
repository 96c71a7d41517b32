package cfgxlsx

import (
	diffpatch "github.com/sourcegraph/go-diff-patch"
)

// Diff returns a unified diff between the formatted forms of a and b, or
// the empty string when they format identically.
func Diff(name string, a, b *Document) string {
	as, bs := a.String(), b.String()
	if as == bs {
		return ""
	}
	return diffpatch.GeneratePatch(name, as, bs)
}
