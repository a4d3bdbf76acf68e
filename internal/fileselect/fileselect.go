// Package fileselect expands digest-and-ingest's FASTA command-line
// arguments, which may be literal paths or glob patterns, into a
// deterministic, sorted, deduplicated file list — grounded on the
// teacher's doublestar.Match usage in internal/indexing for pattern
// matching, here using doublestar's filesystem glob expansion instead.
package fileselect

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Resolve expands each of args (a literal path or a doublestar glob
// pattern such as "corpora/*.fasta") into the files it names, returning
// the deduplicated union sorted lexicographically so a run's file
// processing order is deterministic.
func Resolve(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("fileselect: bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("fileselect: %q matched no files", arg)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}

	sort.Strings(out)
	return out, nil
}
