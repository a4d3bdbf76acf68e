package cleaver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const trypsinRule = `([KR](?=[^P]))|((?<=W)K(?=P))|((?<=M)R(?=P))`

func TestCleaveZeroMissedCleavages(t *testing.T) {
	rule, err := ParseRule(trypsinRule)
	require.NoError(t, err)

	got := Cleave("AKAKBK", rule, 0)
	require.Equal(t, []string{"AK", "AK", "BK"}, got)
}

func TestCleaveTwoMissedCleavages(t *testing.T) {
	rule, err := ParseRule(trypsinRule)
	require.NoError(t, err)

	got := Cleave("AKAKBKCK", rule, 2)
	require.Equal(t,
		[]string{"AK", "AKAK", "AK", "AKAKBK", "AKBK", "BK", "AKBKCK", "BKCK", "CK"},
		got)
}

func TestCleaveNoCutSites(t *testing.T) {
	rule, err := ParseRule(trypsinRule)
	require.NoError(t, err)

	got := Cleave("AAAAA", rule, 0)
	require.Equal(t, []string{"AAAAA"}, got)
}

func TestCleaveProlineException(t *testing.T) {
	rule, err := ParseRule(trypsinRule)
	require.NoError(t, err)

	// K followed by P is not cut; R followed by P is not cut either, except
	// the WK|P and MR|P exceptions.
	got := Cleave("AKPAK", rule, 0)
	require.Equal(t, []string{"AKPAK"}, got)
}

func TestCleaveWKPException(t *testing.T) {
	rule, err := ParseRule(trypsinRule)
	require.NoError(t, err)

	// Ordinarily K followed by P is not cut, but (?<=W)K(?=P) cuts it anyway.
	got := Cleave("AWKPA", rule, 0)
	require.Equal(t, []string{"AWK", "PA"}, got)
}

func TestParseRuleRejectsUnbalancedParens(t *testing.T) {
	_, err := ParseRule(`([KR](?=[^P])`)
	require.Error(t, err)
}

func TestCleaveEmptySequence(t *testing.T) {
	rule, err := ParseRule(trypsinRule)
	require.NoError(t, err)
	require.Nil(t, Cleave("", rule, 0))
}
