package websocket_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/aptpod/wsproto-go/errors"
	. "github.com/aptpod/wsproto-go/transport/websocket"
)

func TestStaticTokenSource_Token(t *testing.T) {
	ts := &StaticTokenSource{StaticToken: &Token{Token: "secret", Header: "X-Token"}}
	got, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, &Token{Token: "secret", Header: "X-Token"}, got)

	got.Header = "modified"
	again, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "X-Token", again.Header)

	got, err = (&StaticTokenSource{}).Token()
	assert.NoError(t, err)
	assert.Nil(t, got)
}

type errTokenSource struct {
	err error
}

func (s errTokenSource) Token() (*oauth2.Token, error) {
	return nil, s.err
}

func TestNewOAuth2TokenSource(t *testing.T) {
	got, err := NewOAuth2TokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access"})).Token()
	require.NoError(t, err)
	assert.Equal(t, &Token{Token: "Bearer access", Header: "Authorization"}, got)

	cause := errors.New("unauthorized")
	_, err = NewOAuth2TokenSource(errTokenSource{err: cause}).Token()
	assert.ErrorIs(t, err, cause)
}
