package clients

import "time"

const (
	CONNECT_TIMEOUT      = 10 * time.Second
	PING_TIMEOUT         = 3 * time.Second
	VALKEY_MAX_RETRIES   = 3
	VALKEY_RETRY_DELAY   = 250 * time.Millisecond
	VALKEY_WRITE_TIMEOUT = 5 * time.Second
)
