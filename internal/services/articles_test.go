package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

type countingArticles struct {
	articles []models.Article
	err      error
	calls    int
}

func (c *countingArticles) List(ctx context.Context) ([]models.Article, error) {
	c.calls++
	return c.articles, c.err
}

// unreachableCache points at a port nothing listens on, so every cache call fails fast.
func unreachableCache() *CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	return NewCacheService(client, time.Minute)
}

func TestCachedArticleStoreFallsBackWhenRedisIsDown(t *testing.T) {
	inner := &countingArticles{articles: []models.Article{{ArticleID: "1", Title: "Breathing basics"}}}
	store := NewCachedArticleStore(inner, unreachableCache())

	articles, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("Expected cache errors to be ignored, got %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Breathing basics" {
		t.Errorf("Unexpected articles: %+v", articles)
	}
	if inner.calls != 1 {
		t.Errorf("Expected one database read, got %d", inner.calls)
	}
}

func TestCachedArticleStorePropagatesStoreErrors(t *testing.T) {
	inner := &countingArticles{err: errors.New("mongo unavailable")}
	store := NewCachedArticleStore(inner, unreachableCache())

	if _, err := store.List(context.Background()); err == nil {
		t.Error("Expected the store error")
	}
}

func TestCacheKey(t *testing.T) {
	if got := CacheKey(ArticlesCollection, "all"); got != "articles:all" {
		t.Errorf("Expected articles:all, got %q", got)
	}
}

func TestNewCacheServiceDefaultTTL(t *testing.T) {
	if c := NewCacheService(nil, 0); c.ttl != DefaultCacheTTL {
		t.Errorf("Expected default TTL, got %v", c.ttl)
	}
}
