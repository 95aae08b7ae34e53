package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

type ValkeyOptions struct {
	Address  string
	Password string
	UseTLS   bool
}

type ValkeyClient struct {
	Client valkey.Client
	opts   ValkeyOptions
	mu     sync.RWMutex
}

func NewValkeyClient(opts ValkeyOptions) (*ValkeyClient, error) {
	client, err := connectValkey(opts)
	if err != nil {
		return nil, err
	}
	slog.Info("[ValkeyClient] Successfully connected to valkey")
	return &ValkeyClient{Client: client, opts: opts}, nil
}

func connectValkey(opts ValkeyOptions) (valkey.Client, error) {
	clientOpts := valkey.ClientOption{
		InitAddress: []string{
			opts.Address,
		},
		Password:         opts.Password,
		ConnWriteTimeout: VALKEY_WRITE_TIMEOUT,
		SelectDB:         0,
	}

	if opts.UseTLS {
		clientOpts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), PING_TIMEOUT)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.Client
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connectValkey(vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) Close() {
	vc.client().Close()
}

// Incr bumps the counter at key and (re)arms its expiry, returning the new
// value.
func (vc *ValkeyClient) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	responses := vc.DoMultiWithRetry(ctx, func(c valkey.Client) []valkey.Completed {
		return []valkey.Completed{
			c.B().Incr().Key(key).Build(),
			c.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build(),
		}
	}, VALKEY_MAX_RETRIES)
	for _, res := range responses {
		if err := res.Error(); err != nil {
			return 0, err
		}
	}
	return responses[0].AsInt64()
}

// DoMultiWithRetry calls build for every attempt. Completed commands are
// recycled once sent, so they cannot be resent.
func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, build func(valkey.Client) []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult
	_ = withRetry(ctx, retries, func() error {
		c := vc.client()
		results = c.DoMulti(ctx, build(c)...)
		for _, r := range results {
			if err := r.Error(); err != nil {
				return err
			}
		}
		return nil
	}, vc.recreateClient)
	return results
}

// withRetry runs attempt until it succeeds, retries is exhausted or ctx is
// done. reconnect runs after every connection error.
func withRetry(ctx context.Context, retries int, attempt func() error, reconnect func()) error {
	var err error
	for i := 0; i < retries; i++ {
		if err = attempt(); err == nil {
			return nil
		}
		slog.Warn("[ValkeyClient] Do Multi failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		if isConnectionError(err) {
			reconnect()
		}
		if i == retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(VALKEY_RETRY_DELAY):
		}
	}
	return err
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
