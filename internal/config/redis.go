package config

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the shared Redis client backing the rate
// limiter and the catalog response cache.
//
// Address resolution: REDIS_HOST + REDIS_PORT when both are set,
// otherwise REDIS_ADDR, otherwise localhost:6379. REDIS_PASSWORD,
// REDIS_DB and REDIS_TLS are optional.
//
// Redis is not required for correctness here, only for throttling and
// cache hits, so a failed ping returns nil and the middleware degrades
// to pass-through rather than refusing to boot.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if h, p := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); h != "" && p != "" {
		addr = h + ":" + p
	}
	if addr == "" {
		addr = "localhost:6379"
	}

	dbNum := 0
	if s := os.Getenv("REDIS_DB"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			dbNum = n
		}
	}

	var tlsConf *tls.Config
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}

	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        dbNum,
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
