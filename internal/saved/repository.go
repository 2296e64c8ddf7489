package saved

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "saved_articles"

var ErrNotFound = errors.New("saved article not found")

type Repository interface {
	// Save stores a and stamps SavedAt. Saving an existing title moves it to the
	// front of the list; created reports whether the title was new.
	Save(ctx context.Context, a *Article) (created bool, err error)
	Remove(ctx context.Context, title string) error
	List(ctx context.Context) ([]Article, error)
	Exists(ctx context.Context, title string) (bool, error)
}

type mongoRepository struct {
	col    *mongo.Collection
	logger *log.Logger
	now    func() time.Time
}

func NewMongoRepository(db *mongo.Database, logger *log.Logger) (Repository, error) {
	if logger == nil {
		logger = log.Default()
	}

	repo := &mongoRepository{
		col:    db.Collection(CollectionName),
		logger: logger,
		now:    time.Now,
	}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// ensureIndexes keeps List ordered by savedAt without a collection scan.
// Uniqueness comes from _id being the title.
func (r *mongoRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "savedAt", Value: -1}},
	})
	if err != nil {
		r.logger.Printf("failed to create indexes: %v", err)
		return fmt.Errorf("create saved indexes: %w", err)
	}
	return nil
}

func normalizeTitle(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

func (r *mongoRepository) Save(ctx context.Context, a *Article) (bool, error) {
	a.Title = normalizeTitle(a.Title)
	if a.Title == "" {
		return false, errors.New("saved article needs a title")
	}
	// mongo keeps milliseconds; truncate so the caller sees what is stored
	a.SavedAt = r.now().UTC().Truncate(time.Millisecond)

	res, err := r.col.UpdateOne(
		ctx,
		bson.M{"_id": a.Title},
		bson.M{"$set": bson.M{
			"displayTitle": a.DisplayTitle,
			"description":  a.Description,
			"extract":      a.Extract,
			"thumbnailUrl": a.ThumbnailURL,
			"savedAt":      a.SavedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("save %q: %w", a.Title, err)
	}

	created := res.UpsertedCount > 0
	if created {
		r.logger.Printf("saved new article: %s", a.Title)
	} else {
		r.logger.Printf("re-saved article: %s", a.Title)
	}
	return created, nil
}

func (r *mongoRepository) Remove(ctx context.Context, title string) error {
	title = normalizeTitle(title)

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": title})
	if err != nil {
		return fmt.Errorf("remove %q: %w", title, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	r.logger.Printf("removed saved article: %s", title)
	return nil
}

// List returns saved articles, newest first.
func (r *mongoRepository) List(ctx context.Context) ([]Article, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{
		{Key: "savedAt", Value: -1},
		{Key: "_id", Value: 1},
	}))
	if err != nil {
		return nil, fmt.Errorf("list saved: %w", err)
	}

	out := []Article{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode saved: %w", err)
	}
	return out, nil
}

func (r *mongoRepository) Exists(ctx context.Context, title string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": normalizeTitle(title)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("lookup %q: %w", title, err)
	}
	return n > 0, nil
}
