package mass

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequenceAllResidues(t *testing.T) {
	m, err := Sequence("ARNDCEQGHILKMFPSTWYV", nil)
	require.NoError(t, err)
	require.InDelta(t, 2376.11432, m, 1e-5)
}

func TestSequenceIsPureFunction(t *testing.T) {
	a, err := Sequence("PEPTIDE", nil)
	require.NoError(t, err)
	b, err := Sequence("PEPTIDE", nil)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestSequenceUnknownResidue(t *testing.T) {
	_, err := Sequence("PEPTIZE", nil)
	var ur *UnknownResidueError
	require.True(t, errors.As(err, &ur))
	require.Equal(t, byte('Z'), ur.Residue)
}

func TestSequenceRepeatedResidueHistogram(t *testing.T) {
	m, err := Sequence("AAA", nil)
	require.NoError(t, err)
	require.InDelta(t, 3*MonoisotopicResidueMass['A'], m, 1e-9)
}
