package rpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTransportConfigDefaults(t *testing.T) {
	var cfg TransportConfig
	cfg.applyDefaults()

	require.Equal(t, 20<<20, cfg.MaxSendMsgSize)
	require.Equal(t, 1<<30, cfg.MaxRecvMsgSize)
	require.Equal(t, 3*time.Second, cfg.connectTimeout())
	require.Equal(t, 10*time.Minute, cfg.keepaliveInterval())
	require.Equal(t, 3*time.Second, cfg.keepaliveTimeout())
	require.Equal(t, uint32(100), cfg.BackoffBaseDelayMs)
	require.Equal(t, uint32(3000), cfg.BackoffMaxDelayMs)
	require.Equal(t, 5*time.Second, cfg.writeTimeout())
	require.Equal(t, time.Minute, cfg.queryTimeout())
}

func TestTransportConfigOverrides(t *testing.T) {
	cfg := TransportConfig{
		MaxSendMsgSize: 1 << 20,
		WriteTimeoutMs: 100,
	}
	cfg.applyDefaults()

	require.Equal(t, 1<<20, cfg.MaxSendMsgSize)
	require.Equal(t, 100*time.Millisecond, cfg.writeTimeout())
	// Untouched fields still get their defaults.
	require.Equal(t, 1<<30, cfg.MaxRecvMsgSize)
	require.Equal(t, time.Minute, cfg.queryTimeout())
}
