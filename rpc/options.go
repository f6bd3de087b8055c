package rpc

import "time"

// TransportConfig tunes the grpc connections to the cluster. Zero fields
// keep their defaults.
type TransportConfig struct {
	MaxSendMsgSize     int    `json:"max_send_msg_size"`
	MaxRecvMsgSize     int    `json:"max_recv_msg_size"`
	ConnectTimeoutMs   uint32 `json:"connect_timeout_ms"`
	KeepaliveIntervalS uint32 `json:"keepalive_interval_s"`
	KeepaliveTimeoutS  uint32 `json:"keepalive_timeout_s"`
	BackoffBaseDelayMs uint32 `json:"backoff_base_delay_ms"`
	BackoffMaxDelayMs  uint32 `json:"backoff_max_delay_ms"`
	WriteTimeoutMs     uint32 `json:"write_timeout_ms"`
	QueryTimeoutMs     uint32 `json:"query_timeout_ms"`
}

func (c *TransportConfig) applyDefaults() {
	if c.MaxSendMsgSize == 0 {
		c.MaxSendMsgSize = 20 << 20
	}
	if c.MaxRecvMsgSize == 0 {
		c.MaxRecvMsgSize = 1 << 30
	}
	if c.ConnectTimeoutMs == 0 {
		c.ConnectTimeoutMs = 3000
	}
	if c.KeepaliveIntervalS == 0 {
		c.KeepaliveIntervalS = 600
	}
	if c.KeepaliveTimeoutS == 0 {
		c.KeepaliveTimeoutS = 3
	}
	if c.BackoffBaseDelayMs == 0 {
		c.BackoffBaseDelayMs = 100
	}
	if c.BackoffMaxDelayMs == 0 {
		c.BackoffMaxDelayMs = 3000
	}
	if c.WriteTimeoutMs == 0 {
		c.WriteTimeoutMs = 5000
	}
	if c.QueryTimeoutMs == 0 {
		c.QueryTimeoutMs = 60000
	}
}

func (c *TransportConfig) connectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

func (c *TransportConfig) keepaliveInterval() time.Duration {
	return time.Duration(c.KeepaliveIntervalS) * time.Second
}

func (c *TransportConfig) keepaliveTimeout() time.Duration {
	return time.Duration(c.KeepaliveTimeoutS) * time.Second
}

func (c *TransportConfig) writeTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMs) * time.Millisecond
}

func (c *TransportConfig) queryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMs) * time.Millisecond
}
