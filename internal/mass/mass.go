// Package mass computes the monoisotopic mass of an amino acid sequence,
// grounded on lib/proteomics/util/mass.py's get_aa_sequence_mass: build a
// per-residue occurrence histogram, then sum count*residue_mass.
package mass

import "fmt"

// MonoisotopicResidueMass is the default monoisotopic residue mass table,
// in Daltons, for the twenty standard amino acids.
var MonoisotopicResidueMass = map[byte]float64{
	'A': 71.03711,
	'R': 156.10111,
	'N': 114.04293,
	'D': 115.02694,
	'C': 103.00919,
	'E': 129.04259,
	'Q': 128.05858,
	'G': 57.02146,
	'H': 137.05891,
	'I': 113.08406,
	'L': 113.08406,
	'K': 128.09496,
	'M': 131.04049,
	'F': 147.06841,
	'P': 97.05276,
	'S': 87.03203,
	'T': 101.04768,
	'W': 186.07931,
	'Y': 163.06333,
	'V': 99.06841,
}

// UnknownResidueError reports a residue with no entry in the mass table.
type UnknownResidueError struct {
	Residue byte
}

func (e *UnknownResidueError) Error() string {
	return fmt.Sprintf("mass: unknown residue %q", e.Residue)
}

// Sequence returns the monoisotopic mass of seq using the given residue mass
// table (pass nil to use MonoisotopicResidueMass). It returns an
// *UnknownResidueError on the first residue it cannot find in the table.
func Sequence(seq string, table map[byte]float64) (float64, error) {
	if table == nil {
		table = MonoisotopicResidueMass
	}

	// Residues are summed in order of first appearance so the floating-point
	// total does not depend on map iteration order.
	counts := make(map[byte]int, len(table))
	var order []byte
	for i := 0; i < len(seq); i++ {
		if counts[seq[i]] == 0 {
			order = append(order, seq[i])
		}
		counts[seq[i]]++
	}

	var total float64
	for _, residue := range order {
		count := counts[residue]
		m, ok := table[residue]
		if !ok {
			return 0, &UnknownResidueError{Residue: residue}
		}
		total += float64(count) * m
	}
	return total, nil
}
