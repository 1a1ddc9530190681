package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtend(t *testing.T) {
	require.EqualError(t, Extend(errors.New("a"), "b"), "b: a")
	assert.NoError(t, Extend(nil, "b"))

	err := Extendf(NewGraphInconsistency("no entry"), "method %s", "run")
	require.EqualError(t, err, "method run: no entry")
	assert.True(t, errors.Is(err, ErrGraphInconsistency))
}
