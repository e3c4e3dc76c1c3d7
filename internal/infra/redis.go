package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis opens the client that backs the job queues (facturación, email)
// and the DNI/RUC lookup cache. Fails fast when the server is unreachable:
// without Redis no comprobante would ever be emitted.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
