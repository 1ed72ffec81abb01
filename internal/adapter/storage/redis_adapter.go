package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/grocery-till/internal/core/domain"
)

const stockKeyPrefix = "stock:"

var decrementStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

if quantity <= 0 then
	return 0
end

local current = redis.call('GET', key)
if not current then
	return 0
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

// RedisAdapter holds stock levels in Redis, one counter per product.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func stockKey(name string) string {
	return stockKeyPrefix + domain.ProductKey(name)
}

func (r *RedisAdapter) DecrementStock(ctx context.Context, name string, quantity int) (bool, error) {
	result, err := decrementStockScript.Run(ctx, r.client, []string{stockKey(name)}, quantity).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

func (r *RedisAdapter) IncrementStock(ctx context.Context, name string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return r.client.IncrBy(ctx, stockKey(name), int64(quantity)).Err()
}

func (r *RedisAdapter) GetStock(ctx context.Context, name string) (int, error) {
	stock, err := r.client.Get(ctx, stockKey(name)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrProductNotFound
	}
	if err != nil {
		return 0, err
	}

	return stock, nil
}

func (r *RedisAdapter) SetStock(ctx context.Context, name string, quantity int) error {
	return r.client.Set(ctx, stockKey(name), quantity, 0).Err()
}

// SeedStock resets every product's counter to its configured stock.
func (r *RedisAdapter) SeedStock(ctx context.Context, products []domain.Product) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range products {
			pipe.Set(ctx, stockKey(p.Name), p.Stock, 0)
		}
		return nil
	})
	return err
}
