// Package repositories persists users and adverts. Mongo* types talk to
// MongoDB; Memory* types keep everything in process and back the tests and
// DB_DRIVER=memory.
package repositories

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/propelyu/app/models"
	"github.com/shashiranjanraj/propelyu/pkg/suggest"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("repositories: not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("repositories: duplicate")
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type AdvertRepository interface {
	Create(ctx context.Context, a *models.Advert) error
	FindByID(ctx context.Context, id string) (*models.Advert, error)
	Find(ctx context.Context, q AdvertQuery) ([]models.Advert, error)
	FindByOwner(ctx context.Context, owner string) ([]models.Advert, error)
	FindSimilar(ctx context.Context, q SimilarQuery) ([]models.Advert, error)
	FindInPriceBand(ctx context.Context, q PriceBandQuery) ([]models.Advert, error)
	ExistsByTitleOwner(ctx context.Context, title, owner string) (bool, error)
	Replace(ctx context.Context, a *models.Advert) error
	Delete(ctx context.Context, id string) error
	TrainingSamples(ctx context.Context) ([]suggest.Sample, error)
}
