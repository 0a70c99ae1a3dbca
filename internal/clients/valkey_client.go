package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/redditpersona/config"
	"github.com/valkey-io/valkey-go"
)

const VALKEY_KEY_PREFIX = "redditpersona:userdata"

type ValkeyClient struct {
	Client valkey.Client
	ttl    time.Duration
}

// NewValkeyClient connects and pings. Callers treat an error as "cache disabled".
func NewValkeyClient(cfg config.CacheConfig) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			cfg.Address,
		},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if cfg.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", cfg.Address),
		slog.Duration("ttl", cfg.TTL))

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ValkeyClient{Client: client, ttl: ttl}, nil
}

func (vc *ValkeyClient) Close() {
	if vc != nil && vc.Client != nil {
		vc.Client.Close()
	}
}

func (vc *ValkeyClient) Ping(ctx context.Context) error {
	return vc.Client.Do(ctx, vc.Client.B().Ping().Build()).Error()
}

// GetJSON decodes the cached value into out. A miss returns false with no error.
func (vc *ValkeyClient) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	res := vc.Client.Do(ctx, vc.Client.B().Get().Key(key).Build())
	if err := res.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}
	raw, err := res.AsBytes()
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("[ValkeyClient] corrupt cache entry %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v under key and sets its expiry in the same round trip.
func (vc *ValkeyClient) SetJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	completed := []valkey.Completed{
		vc.Client.B().Set().Key(key).Value(valkey.BinaryString(raw)).Build(),
		vc.Client.B().Expire().Key(key).Seconds(int64(vc.ttl.Seconds())).Build(),
	}
	for _, res := range vc.Client.DoMulti(ctx, completed...) {
		if err := res.Error(); err != nil {
			return err
		}
	}

	slog.Debug("[ValkeyClient] Cached entry", slog.String("key", key))
	return nil
}

// UserDataKey builds the cache key for one fetch mode, limit and user.
func UserDataKey(username string, comprehensive bool, limit int) string {
	mode := "simple"
	if comprehensive {
		mode = "comprehensive"
	}
	return fmt.Sprintf("%s:%s:%d:%s", VALKEY_KEY_PREFIX, mode, limit, strings.ToLower(username))
}
