package services

import (
	"context"

	"github.com/AnshRaj112/hiddenmood-backend/internal/apperrors"
	"github.com/AnshRaj112/hiddenmood-backend/internal/logger"
	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ArticlesCollection = "articles"

// ArticleStore lists the wellness article catalogue.
type ArticleStore interface {
	List(ctx context.Context) ([]models.Article, error)
}

type MongoArticleStore struct {
	coll *mongo.Collection
}

func NewMongoArticleStore(db *mongo.Database) *MongoArticleStore {
	return &MongoArticleStore{coll: db.Collection(ArticlesCollection)}
}

func (s *MongoArticleStore) List(ctx context.Context) ([]models.Article, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "article_id", Value: 1}}).
		SetProjection(bson.M{"_id": 0})

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	defer cursor.Close(ctx)

	articles := make([]models.Article, 0)
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return articles, nil
}

// CachedArticleStore serves the catalogue from Redis and falls back to the
// wrapped store on a miss. Cache failures only cost a database round trip.
type CachedArticleStore struct {
	store ArticleStore
	cache *CacheService
}

func NewCachedArticleStore(store ArticleStore, cache *CacheService) *CachedArticleStore {
	return &CachedArticleStore{store: store, cache: cache}
}

func (s *CachedArticleStore) List(ctx context.Context) ([]models.Article, error) {
	key := CacheKey(ArticlesCollection, "all")

	var cached []models.Article
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		logger.Warn("article cache read failed", "error", err)
	} else if hit {
		return cached, nil
	}

	articles, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, articles); err != nil {
		logger.Warn("article cache write failed", "error", err)
	}
	return articles, nil
}
