package apperr

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("price is required"), http.StatusBadRequest},
		{Unauthenticated("no token"), http.StatusUnauthorized},
		{Forbidden("other company"), http.StatusForbidden},
		{NotFound("chantier not found"), http.StatusNotFound},
		{Conflict("email taken"), http.StatusConflict},
		{Transport(io.EOF, "smtp"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(c.err), c.err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := NotFound("avenant %s not found", "x")

	wrapped := errors.Wrap(fmt.Errorf("lookup: %w", base), "handler")
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.Equal(t, "avenant x not found", Message(wrapped))
}

func TestMessageHidesInternalDetails(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("pq: connection refused")))
	err := Storage(io.ErrUnexpectedEOF, "write artifact")
	assert.Equal(t, "write artifact", Message(err))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
