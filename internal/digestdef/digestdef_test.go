package digestdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidDocument(t *testing.T) {
	raw := []byte(`{
		"protease": {"id": "trypsin", "cleavage_rule": "([KR](?=[^P]))|((?<=W)K(?=P))|((?<=M)R(?=P))"},
		"max_missed_cleavages": 2,
		"min_acids": 6
	}`)
	def, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "trypsin", def.Protease.ID)
	assert.Equal(t, 2, def.MaxMissedCleavages)
	assert.Equal(t, 6, def.MinAcids)
}

func TestParseMissingProteaseID(t *testing.T) {
	raw := []byte(`{
		"protease": {"cleavage_rule": "X"},
		"max_missed_cleavages": 0,
		"min_acids": 6
	}`)
	_, err := Parse(raw)
	assert.Error(t, err)
}

func TestParseNegativeMaxMissedCleavages(t *testing.T) {
	raw := []byte(`{
		"protease": {"id": "trypsin", "cleavage_rule": "X"},
		"max_missed_cleavages": -1,
		"min_acids": 6
	}`)
	_, err := Parse(raw)
	assert.Error(t, err)
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	assert.Error(t, err)
}
