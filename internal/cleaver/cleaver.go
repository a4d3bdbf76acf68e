// Package cleaver performs in silico proteolytic digestion of a protein
// sequence under a configurable cleavage rule, grounded on
// lib/proteomics/util/digest.py's cleave() from the original implementation:
// a sliding window of cleavage sites (width missed_cleavages+2) emits every
// peptide spanning from an earlier site in the window to the window's
// trailing edge, including the implicit final site at end-of-sequence.
package cleaver

// Cleave splits seq into peptides by cutting at every position rule allows,
// permitting up to missedCleavages consecutive cut sites to be skipped
// within a single emitted peptide. Empty peptides (adjacent cut sites, or a
// cut site at position 0 or len(seq)) are never emitted.
func Cleave(seq string, rule *Rule, missedCleavages int) []string {
	if len(seq) == 0 {
		return nil
	}

	cuts := rule.cutPositions(seq)
	// The end of the sequence is always an implicit cleavage site.
	sites := append(append([]int{0}, cuts...), len(seq))

	window := missedCleavages + 2
	var peptides []string

	// Slide a window of up to `window` sites; for every site newly admitted
	// at the trailing edge, emit the peptide from each earlier site in the
	// window to that trailing edge.
	for end := 1; end < len(sites); end++ {
		lo := end - window + 1
		if lo < 0 {
			lo = 0
		}
		for start := lo; start < end; start++ {
			a, b := sites[start], sites[end]
			if a == b {
				continue
			}
			peptides = append(peptides, seq[a:b])
		}
	}

	return peptides
}
