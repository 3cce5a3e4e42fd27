package repositories

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shashiranjanraj/propelyu/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryUsersUniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	u := &models.User{Username: "ada", Email: "ada@example.com", Role: "vendor"}
	require.NoError(t, repo.Create(ctx, u))
	assert.False(t, u.ID.IsZero())

	err := repo.Create(ctx, &models.User{Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := repo.FindByID(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)

	ok, _ := repo.ExistsByEmail(ctx, "ada@example.com")
	assert.True(t, ok)
	_, err = repo.FindByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryAdvertsCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAdvertRepository()

	a := &models.Advert{Title: "Flat", Description: "cosy", Owner: "u1", Price: 100, Category: "rent"}
	require.NoError(t, repo.Create(ctx, a))

	assert.ErrorIs(t, repo.Create(ctx, &models.Advert{Title: "Flat", Owner: "u1"}), ErrDuplicate)
	require.NoError(t, repo.Create(ctx, &models.Advert{Title: "Flat", Owner: "u2"}))
	require.NoError(t, repo.Create(ctx, &models.Advert{Title: "Flat 2", Owner: "u1"}))

	exists, _ := repo.ExistsByTitleOwner(ctx, "Flat", "u1")
	assert.True(t, exists)

	mine, _ := repo.FindByOwner(ctx, "u1")
	assert.Len(t, mine, 2)

	a.Price = 150
	require.NoError(t, repo.Replace(ctx, a))
	got, err := repo.FindByID(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 150.0, got.Price)

	clash := *got
	clash.Title = "Flat 2"
	assert.ErrorIs(t, repo.Replace(ctx, &clash), ErrDuplicate)

	require.NoError(t, repo.Delete(ctx, a.ID.Hex()))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID.Hex()), ErrNotFound)
	_, err = repo.FindByID(ctx, a.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	missing := &models.Advert{ID: primitive.NewObjectID()}
	assert.ErrorIs(t, repo.Replace(ctx, missing), ErrNotFound)
}

func TestMemoryAdvertsPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAdvertRepository()
	for i := 0; i < 15; i++ {
		require.NoError(t, repo.Create(ctx, &models.Advert{Title: fmt.Sprintf("ad %02d", i), Owner: "o"}))
	}

	page, _ := repo.Find(ctx, AdvertQuery{}.Normalize())
	assert.Len(t, page, DefaultLimit)

	rest, _ := repo.Find(ctx, AdvertQuery{Limit: 10, Skip: 10})
	require.Len(t, rest, 5)
	assert.Equal(t, "ad 10", rest[0].Title)

	samples, _ := repo.TrainingSamples(ctx)
	assert.Len(t, samples, 15)
}

func TestMemoryAdvertsConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAdvertRepository()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, &models.Advert{Title: "Same", Owner: "o"})
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok)
}
