package genstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisGenStore keeps epochs in Redis under "epoch:<ns>:<key>". Keys carry no
// TTL; an expired epoch would reset to 0 and break monotonicity.
type RedisGenStore struct {
	rdb         redis.UniversalClient
	ns          string
	closeClient bool
}

var _ GenStore = (*RedisGenStore)(nil)

// NewRedisGenStore wraps client. When closeClient is true Close also closes the client.
func NewRedisGenStore(client redis.UniversalClient, namespace string, closeClient bool) *RedisGenStore {
	return &RedisGenStore{rdb: client, ns: namespace, closeClient: closeClient}
}

func (s *RedisGenStore) key(k string) string { return "epoch:" + s.ns + ":" + k }

func (s *RedisGenStore) Snapshot(ctx context.Context, k string) (uint64, error) {
	res, err := s.rdb.Get(ctx, s.key(k)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis epoch parse: %w", err)
	}
	return u, nil
}

// SnapshotMany reads all keys with one MGET.
func (s *RedisGenStore) SnapshotMany(ctx context.Context, ks []string) (map[string]uint64, error) {
	if len(ks) == 0 {
		return map[string]uint64{}, nil
	}
	keys := make([]string, len(ks))
	for i, k := range ks {
		keys[i] = s.key(k)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint64, len(ks))
	for i, v := range vals {
		var raw string
		switch vv := v.(type) {
		case nil:
			out[ks[i]] = 0
			continue
		case string:
			raw = vv
		case []byte:
			raw = string(vv)
		default:
			raw = fmt.Sprint(vv)
		}
		u, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis epoch parse at %s: %w", ks[i], err)
		}
		out[ks[i]] = u
	}
	return out, nil
}

func (s *RedisGenStore) Bump(ctx context.Context, k string) (uint64, error) {
	return s.rdb.Incr(ctx, s.key(k)).Uint64()
}

func (s *RedisGenStore) Close(context.Context) error {
	if !s.closeClient {
		return nil
	}
	if err := s.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
