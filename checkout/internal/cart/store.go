package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/novabook/bookify/checkout/internal/cache"
	"github.com/novabook/bookify/checkout/internal/otel"
	"github.com/novabook/bookify/internal/log"
)

type storedCart struct {
	Items []LineItem `json:"items"`
}

// Store owns one cart per user and keeps a serialized copy in redis under a
// fixed per-user key so a reload does not lose cart contents. Persistence is
// best-effort: a redis failure is logged and ignored, the in-memory cart is
// authoritative for the session.
type Store struct {
	mu    sync.Mutex
	cache *redis.Client
	carts map[uuid.UUID]*Cart
}

func NewStore(cache *redis.Client) *Store {
	return &Store{cache: cache, carts: map[uuid.UUID]*Cart{}}
}

func (s *Store) AddItem(c context.Context, userID uuid.UUID, item LineItem) Snapshot {
	c, span := otel.Tracer.Start(c, "CartStore AddItem")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(c, userID)
	cart.AddItem(item)
	s.persist(c, userID, cart)
	return cart.Snapshot()
}

func (s *Store) RemoveItem(c context.Context, userID uuid.UUID, serviceID uuid.UUID) Snapshot {
	c, span := otel.Tracer.Start(c, "CartStore RemoveItem")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(c, userID)
	cart.RemoveItem(serviceID)
	s.persist(c, userID, cart)
	return cart.Snapshot()
}

func (s *Store) UpdateQuantity(
	c context.Context,
	userID uuid.UUID,
	serviceID uuid.UUID,
	quantity int32,
) Snapshot {
	c, span := otel.Tracer.Start(c, "CartStore UpdateQuantity")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(c, userID)
	cart.UpdateQuantity(serviceID, quantity)
	s.persist(c, userID, cart)
	return cart.Snapshot()
}

// Clear empties the cart. Only the checkout coordinator calls this, and only
// after the whole transaction has succeeded.
func (s *Store) Clear(c context.Context, userID uuid.UUID) {
	c, span := otel.Tracer.Start(c, "CartStore Clear")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(c, userID)
	cart.Clear()
	s.persist(c, userID, cart)
}

func (s *Store) Snapshot(c context.Context, userID uuid.UUID) Snapshot {
	c, span := otel.Tracer.Start(c, "CartStore Snapshot")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(c, userID).Snapshot()
}

// load returns the in-memory cart for the user, restoring it from redis on
// first access. A missing key is an empty cart; a read failure is treated the
// same way since persistence is best-effort.
func (s *Store) load(c context.Context, userID uuid.UUID) *Cart {
	if cart, ok := s.carts[userID]; ok {
		return cart
	}

	cacheKey := fmt.Sprintf(cache.KEY_CARTS, userID.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore load").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	cart := New()
	jsonCache, err := s.cache.JSONGet(c, cacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			err = fmt.Errorf("failed finding cart in cache with error=%w", err)
			logger.Warn().Err(err).Msg(err.Error())
		}
		s.carts[userID] = cart
		return cart
	}
	if jsonCache != "" {
		stored := storedCart{}
		if err := json.Unmarshal([]byte(jsonCache), &stored); err != nil {
			err = fmt.Errorf("failed unmarshaling cached cart with error=%w", err)
			logger.Warn().Err(err).Msg(err.Error())
		} else {
			cart = Restore(stored.Items)
		}
	}

	s.carts[userID] = cart
	return cart
}

func (s *Store) persist(c context.Context, userID uuid.UUID, cart *Cart) {
	cacheKey := fmt.Sprintf(cache.KEY_CARTS, userID.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore persist").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	err := s.cache.JSONSet(c, cacheKey, "$", storedCart{Items: cart.items}).Err()
	if err != nil {
		err = fmt.Errorf("failed persisting cart to cache with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
	}
}
