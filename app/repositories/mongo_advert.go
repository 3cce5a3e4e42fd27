package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/propelyu/app/models"
	"github.com/shashiranjanraj/propelyu/pkg/suggest"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const AdvertsCollection = "adverts"

type MongoAdvertRepository struct {
	col *mongo.Collection
}

func NewMongoAdvertRepository(db *mongo.Database) *MongoAdvertRepository {
	return &MongoAdvertRepository{col: db.Collection(AdvertsCollection)}
}

func (r *MongoAdvertRepository) Create(ctx context.Context, a *models.Advert) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	if _, err := r.col.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("adverts: insert: %w", err)
	}
	return nil
}

func (r *MongoAdvertRepository) FindByID(ctx context.Context, id string) (*models.Advert, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var a models.Advert
	if err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("adverts: find: %w", err)
	}
	return &a, nil
}

func (r *MongoAdvertRepository) Find(ctx context.Context, q AdvertQuery) ([]models.Advert, error) {
	opts := options.Find().SetLimit(q.Limit).SetSkip(q.Skip).SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.find(ctx, q.Filter(), opts)
}

func (r *MongoAdvertRepository) FindByOwner(ctx context.Context, owner string) ([]models.Advert, error) {
	return r.find(ctx, bson.D{{Key: "owner", Value: owner}}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *MongoAdvertRepository) FindSimilar(ctx context.Context, q SimilarQuery) ([]models.Advert, error) {
	opts := options.Find().SetSkip(q.Skip).SetSort(bson.D{{Key: "_id", Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return r.find(ctx, q.Filter(), opts)
}

func (r *MongoAdvertRepository) FindInPriceBand(ctx context.Context, q PriceBandQuery) ([]models.Advert, error) {
	return r.find(ctx, q.Filter(), options.Find().SetLimit(q.limit()))
}

func (r *MongoAdvertRepository) ExistsByTitleOwner(ctx context.Context, title, owner string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.D{{Key: "title", Value: title}, {Key: "owner", Value: owner}})
	if err != nil {
		return false, fmt.Errorf("adverts: count: %w", err)
	}
	return n > 0, nil
}

func (r *MongoAdvertRepository) Replace(ctx context.Context, a *models.Advert) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: a.ID}}, a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("adverts: replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoAdvertRepository) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("adverts: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TrainingSamples projects every advert down to (description, price).
func (r *MongoAdvertRepository) TrainingSamples(ctx context.Context) ([]suggest.Sample, error) {
	opts := options.Find().SetProjection(bson.D{
		{Key: "_id", Value: 0},
		{Key: "description", Value: 1},
		{Key: "price", Value: 1},
	})
	cur, err := r.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("adverts: samples: %w", err)
	}
	var out []suggest.Sample
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("adverts: samples decode: %w", err)
	}
	return out, nil
}

func (r *MongoAdvertRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]models.Advert, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("adverts: find: %w", err)
	}
	out := []models.Advert{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("adverts: decode: %w", err)
	}
	return out, nil
}
