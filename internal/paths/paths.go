// Package paths builds the numbered image file names a batch walks over.
package paths

import (
	"fmt"
	"path/filepath"
)

// IndexWidth is the zero-padded width of the numeric part of a file name.
const IndexWidth = 4

const maxPrealloc = 1 << 16

// Name returns prefix + zero-padded index + suffix.
func Name(i int, prefix, suffix string) string {
	return fmt.Sprintf("%s%0*d%s", prefix, IndexWidth, i, suffix)
}

// Generate returns one path per index in [start, end], in order. The files are
// not checked for existence. An inverted range yields an empty slice.
func Generate(start, end int, prefix, suffix, dir string) []string {
	if end < start {
		return []string{}
	}
	// end-start+1 overflows for extreme ranges; uint arithmetic does not.
	out := make([]string, 0, min(uint(end)-uint(start), maxPrealloc)+1)
	for i := start; ; i++ {
		out = append(out, filepath.Join(dir, Name(i, prefix, suffix)))
		if i == end {
			return out
		}
	}
}
