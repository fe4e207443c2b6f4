package api

import (
	"os"
	"testing"

	"folio/apitest"
)

var testServer *apitest.Server

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestMain(m *testing.M) {
	testServer = apitest.NewServer()

	code := m.Run()

	testServer.Close()
	os.Exit(code)
}

// newTestClient resets the shared backend and returns a client pointed at it.
// An empty token makes the client unauthenticated.
func newTestClient(t *testing.T, token string) *Client {
	t.Helper()

	testServer.Reset()
	return NewClient(MustEndpoints(testServer.URL), WithTokens(staticToken(token)))
}
