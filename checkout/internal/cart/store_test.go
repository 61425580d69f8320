package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupCache(t *testing.T, c context.Context) *goRedis.Client {
	t.Helper()

	redisContainer, err := testRedis.Run(
		c,
		"redis/redis-stack-server:7.4.0-v3",
		testcontainers.WithWaitStrategy(wait.ForListeningPort("6379/tcp")),
	)
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := redisContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed terminating redis container with error: %s", err)
		}
	})

	connStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	opt, err := goRedis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}
	return goRedis.NewClient(opt)
}

func TestStore_SurvivesReload(t *testing.T) {
	c := context.Background()
	cache := setupCache(t, c)
	userId := uuid.New()
	serviceA := uuid.New()
	serviceB := uuid.New()

	store := NewStore(cache)
	store.AddItem(c, userId, lineItem(serviceA, "50", 2))
	store.AddItem(c, userId, lineItem(serviceB, "30", 1))

	reloaded := NewStore(cache)
	snapshot := reloaded.Snapshot(c, userId)

	require.Len(t, snapshot.Items, 2)
	assert.Equal(t, serviceA, snapshot.Items[0].ServiceID)
	assert.Equal(t, serviceB, snapshot.Items[1].ServiceID)
	assert.True(t, snapshot.Subtotal.Equal(decimal.RequireFromString("130")))
}

func TestStore_CartsAreScopedPerUser(t *testing.T) {
	c := context.Background()
	cache := setupCache(t, c)
	userA := uuid.New()
	userB := uuid.New()

	store := NewStore(cache)
	store.AddItem(c, userA, lineItem(uuid.New(), "100", 1))

	assert.True(t, store.Snapshot(c, userB).IsEmpty())
	assert.False(t, store.Snapshot(c, userA).IsEmpty())
}

func TestStore_ClearPersists(t *testing.T) {
	c := context.Background()
	cache := setupCache(t, c)
	userId := uuid.New()

	store := NewStore(cache)
	store.AddItem(c, userId, lineItem(uuid.New(), "100", 1))
	store.Clear(c, userId)

	reloaded := NewStore(cache)
	assert.True(t, reloaded.Snapshot(c, userId).IsEmpty())
}

func TestStore_SurvivesCacheOutage(t *testing.T) {
	c := context.Background()
	// No redis is listening here; every load and persist fails.
	cache := goRedis.NewClient(&goRedis.Options{Addr: "127.0.0.1:1"})
	userId := uuid.New()
	serviceA := uuid.New()
	serviceB := uuid.New()

	store := NewStore(cache)
	snapshot := store.AddItem(c, userId, lineItem(serviceA, "50", 2))
	require.Len(t, snapshot.Items, 1)

	snapshot = store.AddItem(c, userId, lineItem(serviceB, "30", 1))
	require.Len(t, snapshot.Items, 2)
	assert.True(t, snapshot.Subtotal.Equal(decimal.RequireFromString("130")))

	snapshot = store.UpdateQuantity(c, userId, serviceA, 1)
	assert.True(t, snapshot.Subtotal.Equal(decimal.RequireFromString("80")))

	snapshot = store.Snapshot(c, userId)
	require.Len(t, snapshot.Items, 2)
	assert.Equal(t, serviceA, snapshot.Items[0].ServiceID)
	assert.Equal(t, serviceB, snapshot.Items[1].ServiceID)
}

func TestStore_UpdateQuantityZeroRemoves(t *testing.T) {
	c := context.Background()
	cache := setupCache(t, c)
	userId := uuid.New()
	serviceA := uuid.New()

	store := NewStore(cache)
	store.AddItem(c, userId, lineItem(serviceA, "100", 2))
	snapshot := store.UpdateQuantity(c, userId, serviceA, 0)

	assert.True(t, snapshot.IsEmpty())
}
