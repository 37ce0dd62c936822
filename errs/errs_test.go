package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ertancg/Comp304-FatFileSystem/errs"
)

func TestSentinelIsComparable(t *testing.T) {
	var err error = errs.ErrNotFound
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestWithMessageUnwrapsToSentinel(t *testing.T) {
	wrapped := errs.ErrExists.WithMessage("a.txt already exists")
	assert.True(t, errors.Is(wrapped, errs.ErrExists))
	assert.Contains(t, wrapped.Error(), "a.txt already exists")
}
