// Package cache はカートの読み取りキャッシュ（Redis）を提供する。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"topupstore/internal/domain/model"
	repo "topupstore/internal/repository"

	"github.com/redis/go-redis/v9"
)

const (
	cartKeyPrefix    = "cart:"
	cartVerKeyPrefix = "cartver:"
	cartTTL          = 15 * time.Minute
	// 同時に切れないようにずらす
	cartTTLJitter = 60 * time.Second
	// 世代キーはカートより十分長く残す
	cartVerTTL = 24 * time.Hour
)

// 世代が進んでいたので書かなかった
var errStaleVersion = errors.New("cart cache version moved")

type RedisCartCache struct {
	client *redis.Client
	ttl    time.Duration
	jitter time.Duration
}

var _ repo.CartCache = (*RedisCartCache)(nil)

func NewRedisCartCache(client *redis.Client) *RedisCartCache {
	return &RedisCartCache{client: client, ttl: cartTTL, jitter: cartTTLJitter}
}

func cartKey(customerID string) string {
	return cartKeyPrefix + customerID
}

func cartVerKey(customerID string) string {
	return cartVerKeyPrefix + customerID
}

func (c *RedisCartCache) Get(ctx context.Context, customerID string) (*model.Cart, error) {
	raw, err := c.client.Get(ctx, cartKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart model.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		// 壊れた値は捨てる
		_ = c.client.Del(ctx, cartKey(customerID)).Err()
		return nil, fmt.Errorf("decode cached cart: %w", err)
	}
	return &cart, nil
}

func (c *RedisCartCache) Version(ctx context.Context, customerID string) (int64, error) {
	v, err := c.client.Get(ctx, cartVerKey(customerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get cart version: %w", err)
	}
	return v, nil
}

// 世代キーを WATCH して、変わっていなければ MULTI で書く
func (c *RedisCartCache) SetIfVersion(ctx context.Context, customerID string, version int64, cart *model.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	verKey := cartVerKey(customerID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, cartKey(customerID), raw, c.expiration())
			return nil
		})
		return err
	}, verKey)

	//途中で消された
	if errors.Is(err, errStaleVersion) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (c *RedisCartCache) Delete(ctx context.Context, customerID string) error {
	verKey := cartVerKey(customerID)
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, verKey)
		p.Expire(ctx, verKey, cartVerTTL)
		p.Del(ctx, cartKey(customerID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

func (c *RedisCartCache) expiration() time.Duration {
	if c.jitter <= 0 {
		return c.ttl
	}
	return c.ttl + time.Duration(rand.Int63n(int64(c.jitter)))
}

// Redis を使わないとき用
type NopCartCache struct{}

var _ repo.CartCache = NopCartCache{}

func (NopCartCache) Get(context.Context, string) (*model.Cart, error)               { return nil, nil }
func (NopCartCache) Version(context.Context, string) (int64, error)                 { return 0, nil }
func (NopCartCache) SetIfVersion(context.Context, string, int64, *model.Cart) error { return nil }
func (NopCartCache) Delete(context.Context, string) error                           { return nil }
