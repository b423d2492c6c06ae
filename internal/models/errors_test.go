package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_ReturnsTypedKind(t *testing.T) {
	assert.Equal(t, KindAuth, KindOf(NewAuthError("bad credential")))
	assert.Equal(t, KindRate, KindOf(NewRateError("too many")))
	assert.Equal(t, KindNotFound, KindOf(NewNotFoundError("missing")))
}

func TestKindOf_OpaqueErrorDefaultsToUpstream(t *testing.T) {
	assert.Equal(t, KindUpstream, KindOf(errors.New("boom")))
}

func TestError_MessageIncludesFieldOnlyForInputErrors(t *testing.T) {
	in := NewInputError("channel", "unknown channel")
	assert.Contains(t, in.Error(), "field=channel")

	auth := NewAuthError("bad credential")
	assert.NotContains(t, auth.Error(), "field=")
}

func TestError_UnwrapExposesWrappedCause(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := NewUpstreamError("embedding call failed", cause)
	assert.ErrorIs(t, wrapped, cause)
}
