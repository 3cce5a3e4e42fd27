package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/shashiranjanraj/propelyu/app/models"
	"github.com/shashiranjanraj/propelyu/pkg/suggest"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository keeps users in a map. Email uniqueness is enforced
// under the lock.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[primitive.ObjectID]models.User{}}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

// MemoryAdvertRepository keeps adverts in insertion order, mirroring the
// _id sort of the Mongo implementation.
type MemoryAdvertRepository struct {
	mu      sync.RWMutex
	adverts []models.Advert
}

func NewMemoryAdvertRepository() *MemoryAdvertRepository {
	return &MemoryAdvertRepository{}
}

func (r *MemoryAdvertRepository) Create(_ context.Context, a *models.Advert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOfTitleOwner(a.Title, a.Owner, primitive.NilObjectID) >= 0 {
		return ErrDuplicate
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	r.adverts = append(r.adverts, *a)
	return nil
}

func (r *MemoryAdvertRepository) FindByID(_ context.Context, id string) (*models.Advert, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(oid)
	if i < 0 {
		return nil, ErrNotFound
	}
	a := r.adverts[i]
	return &a, nil
}

func (r *MemoryAdvertRepository) Find(_ context.Context, q AdvertQuery) ([]models.Advert, error) {
	return r.filter(q.Matches, q.Skip, q.Limit), nil
}

func (r *MemoryAdvertRepository) FindByOwner(_ context.Context, owner string) ([]models.Advert, error) {
	return r.filter(func(a models.Advert) bool { return a.Owner == owner }, 0, 0), nil
}

func (r *MemoryAdvertRepository) FindSimilar(_ context.Context, q SimilarQuery) ([]models.Advert, error) {
	return r.filter(q.Matches, q.Skip, q.Limit), nil
}

func (r *MemoryAdvertRepository) FindInPriceBand(_ context.Context, q PriceBandQuery) ([]models.Advert, error) {
	return r.filter(q.Matches, 0, q.limit()), nil
}

func (r *MemoryAdvertRepository) ExistsByTitleOwner(_ context.Context, title, owner string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOfTitleOwner(title, owner, primitive.NilObjectID) >= 0, nil
}

func (r *MemoryAdvertRepository) Replace(_ context.Context, a *models.Advert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(a.ID)
	if i < 0 {
		return ErrNotFound
	}
	if r.indexOfTitleOwner(a.Title, a.Owner, a.ID) >= 0 {
		return ErrDuplicate
	}
	a.UpdatedAt = time.Now().UTC()
	r.adverts[i] = *a
	return nil
}

func (r *MemoryAdvertRepository) Delete(_ context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(oid)
	if i < 0 {
		return ErrNotFound
	}
	r.adverts = append(r.adverts[:i], r.adverts[i+1:]...)
	return nil
}

func (r *MemoryAdvertRepository) TrainingSamples(_ context.Context) ([]suggest.Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]suggest.Sample, 0, len(r.adverts))
	for _, a := range r.adverts {
		out = append(out, suggest.Sample{Description: a.Description, Price: a.Price})
	}
	return out, nil
}

func (r *MemoryAdvertRepository) filter(match func(models.Advert) bool, skip, limit int64) []models.Advert {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Advert{}
	for _, a := range r.adverts {
		if !match(a) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, a)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out
}

func (r *MemoryAdvertRepository) indexOf(id primitive.ObjectID) int {
	for i, a := range r.adverts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryAdvertRepository) indexOfTitleOwner(title, owner string, except primitive.ObjectID) int {
	for i, a := range r.adverts {
		if a.Title == title && a.Owner == owner && a.ID != except {
			return i
		}
	}
	return -1
}
