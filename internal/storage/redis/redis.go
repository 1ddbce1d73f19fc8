// Package redis keeps the menu item cache and per-user carts in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/antonminaichev/foodorder/internal/apperr"
	"github.com/antonminaichev/foodorder/internal/types/menu"
	"github.com/antonminaichev/foodorder/internal/types/order"
)

const (
	menuKeyPrefix = "menu:item:"
	cartKeyPrefix = "cart:"
)

// client is the subset of redis.Cmdable the store uses.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Store struct {
	rdb     client
	menuTTL time.Duration
	cartTTL time.Duration
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func NewStore(rdb client, menuTTL, cartTTL time.Duration) *Store {
	return &Store{rdb: rdb, menuTTL: menuTTL, cartTTL: cartTTL}
}

func (s *Store) GetMenuItem(ctx context.Context, id string) (*menu.Item, error) {
	var it menu.Item
	if err := s.getJSON(ctx, menuKeyPrefix+id, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Store) SetMenuItem(ctx context.Context, it *menu.Item) error {
	return s.setJSON(ctx, menuKeyPrefix+it.ID, it, s.menuTTL)
}

func (s *Store) InvalidateMenuItem(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, menuKeyPrefix+id).Err()
}

func (s *Store) SaveCart(ctx context.Context, c *order.Cart) error {
	return s.setJSON(ctx, cartKey(c.UserID), c, s.cartTTL)
}

func (s *Store) GetCart(ctx context.Context, userID int64) (*order.Cart, error) {
	var c order.Cart
	if err := s.getJSON(ctx, cartKey(userID), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func cartKey(userID int64) string {
	return cartKeyPrefix + strconv.FormatInt(userID, 10)
}

func (s *Store) getJSON(ctx context.Context, key string, dst any) error {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
