package errors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreErrorKindAndUnwrap(t *testing.T) {
	base := io.ErrUnexpectedEOF
	se := NewStoreError("bulk_insert_proteins", true, base)

	assert.Equal(t, KindStoreTransient, se.Kind())
	require.True(t, errors.Is(se, io.ErrUnexpectedEOF))

	se.Transient = false
	assert.Equal(t, KindStoreFatal, se.Kind())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(NewUsageError(errors.New("bad flag"))))
	assert.Equal(t, 2, ExitCode(NewDigestNotFoundError("d1")))
	assert.Equal(t, 2, ExitCode(NewStoreError("op", false, errors.New("boom"))))
}

func TestBadResidueErrorMessage(t *testing.T) {
	err := NewBadResidueError("P1", 'X', errors.New("not in mass table"))
	assert.Contains(t, err.Error(), "P1")
	assert.Contains(t, err.Error(), "X")
}
