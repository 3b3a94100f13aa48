package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	gateKeyPrefix  = "trade:gate:"
	defaultGateTTL = 30 * time.Minute
)

// releaseScript deletes the gate key only if this instance still owns it, so
// a slow release can never free a gate re-acquired by another process.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisGate is a session gate shared across processes serving the same bot
// account, for supervised or warm-standby deployments. The TTL keeps a
// crashed holder from wedging the account.
type RedisGate struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  string
}

func NewRedisGate(client *redis.Client, account string, ttl time.Duration) *RedisGate {
	if ttl <= 0 {
		ttl = defaultGateTTL
	}
	return &RedisGate{
		client: client,
		key:    gateKeyPrefix + account,
		ttl:    ttl,
	}
}

func (g *RedisGate) TryAcquire(ctx context.Context) (bool, error) {
	token := uuid.New().String()

	ok, err := g.client.SetNX(ctx, g.key, token, g.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		g.token = token
	}
	return ok, nil
}

func (g *RedisGate) Release(ctx context.Context) error {
	if g.token == "" {
		return nil
	}

	err := releaseScript.Run(ctx, g.client, []string{g.key}, g.token).Err()
	if err != nil && err != redis.Nil {
		return err
	}

	g.token = ""
	return nil
}
