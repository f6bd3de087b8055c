package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apache/horaedb-client-go/errs"
)

func TestNew(t *testing.T) {
	_, err := New(&Config{})
	require.Error(t, err)

	_, err = New(&Config{Endpoint: "127.0.0.1:8831", Mode: "sidecar"})
	require.Error(t, err)

	// Direct mode parses the endpoint eagerly.
	_, err = New(&Config{Endpoint: "127.0.0.1", Mode: ModeDirect})
	require.Error(t, err)

	cli, err := New(&Config{Endpoint: "127.0.0.1:8831", Mode: ModeProxy})
	require.NoError(t, err)
	require.NoError(t, cli.Close())

	// Direct is the default mode. No connection is dialed until the first
	// request, so creating and closing is safe without a server.
	cli, err = New(&Config{Endpoint: "127.0.0.1:8831"})
	require.NoError(t, err)
	require.NoError(t, cli.Close())
}

func TestResolveDatabase(t *testing.T) {
	db, err := resolveDatabase("public", "")
	require.NoError(t, err)
	require.Equal(t, "public", db)

	db, err = resolveDatabase("public", "other")
	require.NoError(t, err)
	require.Equal(t, "other", db)

	_, err = resolveDatabase("", "")
	require.True(t, errors.Is(err, errs.ErrNoDatabase))
}
