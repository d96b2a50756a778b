package exercises

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=catalog_mocks_test.go -package=exercises_test

const (
	cacheKeyAll        = "exercises||all"
	cacheKeyNamePrefix = "exercises||name||"
	// reference data only changes when the catalog is re-seeded
	cacheExpireSeconds = 60 * 60

	// InvalidateChannel is the redis pub/sub channel seeding announces on.
	InvalidateChannel = "exercises||invalidate"
)

type exercisesRepo interface {
	List(ctx context.Context) ([]Exercise, error)
	GetByName(ctx context.Context, name string) (*Exercise, error)
}

// Catalog serves exercises from an in-process cache, falling back to the repo.
type Catalog struct {
	repo  exercisesRepo
	cache *freecache.Cache
}

func NewCatalog(repo exercisesRepo, cacheSizeMB int) *Catalog {
	return &Catalog{
		repo:  repo,
		cache: freecache.NewCache(cacheSizeMB * 1024 * 1024),
	}
}

func (c *Catalog) List(ctx context.Context) ([]Exercise, error) {
	var list []Exercise
	if c.cacheGet(cacheKeyAll, &list) {
		return list, nil
	}

	list, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Exercise{}
	}

	c.cacheSet(cacheKeyAll, list)
	return list, nil
}

func (c *Catalog) GetByName(ctx context.Context, name string) (*Exercise, error) {
	key := cacheKeyNamePrefix + name

	var e Exercise
	if c.cacheGet(key, &e) {
		return &e, nil
	}

	found, err := c.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	c.cacheSet(key, found)
	return found, nil
}

// Invalidate drops everything cached.
func (c *Catalog) Invalidate() {
	c.cache.Clear()
}

// ListenForInvalidation clears the cache on every message published to
// InvalidateChannel. Blocks until ctx is done.
func (c *Catalog) ListenForInvalidation(ctx context.Context, rdb *redis.Client) {
	sub := rdb.Subscribe(ctx, InvalidateChannel)
	defer func() {
		if err := sub.Close(); err != nil {
			log.Warnf("exercises catalog, close subscription: %s", err)
		}
	}()

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			log.Infof("exercises catalog invalidated by [%s]", msg.Payload)
			c.Invalidate()
		}
	}
}

// PublishInvalidation asks every listening catalog to drop its cache and
// returns how many listeners received the message.
func PublishInvalidation(ctx context.Context, rdb *redis.Client, source string) (int64, error) {
	return rdb.Publish(ctx, InvalidateChannel, source).Result()
}

func (c *Catalog) cacheGet(key string, v any) bool {
	cached, err := c.cache.Get([]byte(key))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("exercises catalog, cache get %s: %s", key, err)
		}
		return false
	}
	if err := json.Unmarshal(cached, v); err != nil {
		log.Errorf("exercises catalog, unmarshal cached %s: %s", key, err)
		return false
	}
	return true
}

func (c *Catalog) cacheSet(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Errorf("exercises catalog, marshal %s: %s", key, err)
		return
	}
	if err := c.cache.Set([]byte(key), data, cacheExpireSeconds); err != nil {
		log.Warnf("exercises catalog, cache set %s: %s", key, err)
	}
}
