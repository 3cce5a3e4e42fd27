package services

import (
	"context"
	"testing"

	"github.com/shashiranjanraj/propelyu/app/models"
	"github.com/shashiranjanraj/propelyu/app/repositories"
	"github.com/shashiranjanraj/propelyu/pkg/apperr"
	"github.com/shashiranjanraj/propelyu/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func create(t *testing.T, f *fixture, in AdvertInput, actor Actor) *models.Advert {
	t.Helper()
	a, err := f.advertSvc.Create(context.Background(), in, []byte("img"), actor)
	require.NoError(t, err)
	return a
}

func TestCreateDuplicateTitleOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	create(t, f, input("Flat A", 1000), vendorA)

	_, err := f.advertSvc.Create(ctx, input("Flat A", 999), nil, vendorA)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 0, f.gen.calls(), "duplicate check runs before generating an image")
	assert.Equal(t, 1, f.media.count())

	create(t, f, input("Flat A", 1000), vendorB)
	create(t, f, input("Flat A2", 1000), vendorA)
}

func TestCreateGeneratesImageWhenMissing(t *testing.T) {
	f := newFixture()
	a, err := f.advertSvc.Create(context.Background(), input("Beach House", 5000), nil, vendorA)
	require.NoError(t, err)

	assert.Equal(t, []string{"Beach House"}, f.gen.prompts)
	assert.Equal(t, "https://media.test/1.png", a.ImageURL)
	assert.Equal(t, vendorA.ID, a.Owner)
}

func TestCreateCollaboratorFailures(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	f.gen.err = errCollaborator
	_, err := f.advertSvc.Create(ctx, input("X", 1), nil, vendorA)
	assert.ErrorIs(t, err, apperr.ErrUnavailable)

	f = newFixture()
	f.media.err = errCollaborator
	_, err = f.advertSvc.Create(ctx, input("X", 1), []byte("img"), vendorA)
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
	ads, _ := f.adverts.Find(ctx, repositories.AdvertQuery{})
	assert.Empty(t, ads, "nothing persisted when upload fails")
}

func TestCreateValidationAndPermission(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.advertSvc.Create(ctx, input("X", 1), nil, guest)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.advertSvc.Create(ctx, AdvertInput{Title: " ", Price: -1}, nil, vendorA)
	require.ErrorIs(t, err, apperr.ErrValidation)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "title")
	assert.Contains(t, ae.Fields, "price")
}

func TestOnlyOwnerOrAdminMayModify(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := create(t, f, input("Flat A", 1000), vendorA)
	id := a.ID.Hex()

	_, err := f.advertSvc.Update(ctx, id, input("Hijack", 1), nil, vendorB)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.advertSvc.Update(ctx, id, input("Hijack", 1), nil, guest)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, f.advertSvc.Delete(ctx, id, vendorB), apperr.ErrForbidden)
	assert.ErrorIs(t, f.advertSvc.Delete(ctx, id, guest), apperr.ErrForbidden)

	updated, err := f.advertSvc.Update(ctx, id, input("Flat A renamed", 1100), nil, admin)
	require.NoError(t, err)
	assert.Equal(t, vendorA.ID, updated.Owner, "owner preserved")

	require.NoError(t, f.advertSvc.Delete(ctx, id, vendorA))
	_, err = f.advertSvc.Get(ctx, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateKeepsImageUnlessReplaced(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := create(t, f, input("Flat A", 1000), vendorA)

	got, err := f.advertSvc.Update(ctx, a.ID.Hex(), input("Flat A", 1200), nil, vendorA)
	require.NoError(t, err)
	assert.Equal(t, a.ImageURL, got.ImageURL)
	assert.Equal(t, 1200.0, got.Price)

	got, err = f.advertSvc.Update(ctx, a.ID.Hex(), input("Flat A", 1200), []byte("new"), vendorA)
	require.NoError(t, err)
	assert.NotEqual(t, a.ImageURL, got.ImageURL)
	assert.Equal(t, 0, f.gen.calls())
}

func TestUpdateRenameIntoDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	create(t, f, input("Flat A", 1000), vendorA)
	b := create(t, f, input("Flat B", 1000), vendorA)

	_, err := f.advertSvc.Update(ctx, b.ID.Hex(), input("Flat A", 1), nil, vendorA)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestGetIsCachedAndInvalidated(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := create(t, f, input("Flat A", 1000), vendorA)
	id := a.ID.Hex()

	first, err := f.advertSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, first.Price)

	_, err = f.advertSvc.Update(ctx, id, input("Flat A", 2000), nil, vendorA)
	require.NoError(t, err)

	second, err := f.advertSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, second.Price)
}

func TestGetErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.advertSvc.Get(ctx, "not-an-id")
	assert.ErrorIs(t, err, apperr.ErrUnprocessable)
	_, err = f.advertSvc.Get(ctx, "64b0000000000000000000ff")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, f.advertSvc.Delete(ctx, "nope", vendorA), apperr.ErrUnprocessable)
}

func TestListValidatesQuery(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	create(t, f, input("Sunny Flat", 1000), vendorA)
	create(t, f, input("Dark Villa", 3000), vendorA)

	ads, err := f.advertSvc.List(ctx, repositories.AdvertQuery{Search: "sunny"})
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, "Sunny Flat", ads[0].Title)

	_, err = f.advertSvc.List(ctx, repositories.AdvertQuery{Limit: 1000})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestByOwnerVendorOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	create(t, f, input("A", 1), vendorA)
	create(t, f, input("B", 1), vendorB)

	mine, err := f.advertSvc.ByOwner(ctx, vendorA)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].Title)

	_, err = f.advertSvc.ByOwner(ctx, guest)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestSimilarExcludesTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	target := create(t, f, AdvertInput{Title: "Flat", Description: "garden view", Price: 1, Category: "apt", Location: "x"}, vendorA)
	create(t, f, AdvertInput{Title: "Big Flat", Description: "roof", Price: 1, Category: "apt", Location: "x"}, vendorA)
	create(t, f, AdvertInput{Title: "Villa", Description: "nice garden view", Price: 1, Category: "apt", Location: "x"}, vendorA)
	create(t, f, AdvertInput{Title: "Shed", Description: "none", Price: 1, Category: "apt", Location: "x"}, vendorA)

	ads, err := f.advertSvc.Similar(ctx, target.ID.Hex(), 0, 0)
	require.NoError(t, err)
	titles := []string{}
	for _, a := range ads {
		titles = append(titles, a.Title)
	}
	assert.ElementsMatch(t, []string{"Big Flat", "Villa"}, titles)

	_, err = f.advertSvc.Similar(ctx, target.ID.Hex(), -1, 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	var fired []string
	for _, name := range []string{event.AdvertCreated, event.AdvertUpdated, event.AdvertDeleted} {
		name := name
		f.bus.Listen(name, func(p interface{}) {
			_, ok := p.(models.Advert)
			assert.True(t, ok)
			fired = append(fired, name)
		})
	}

	a := create(t, f, input("Flat", 1), vendorA)
	_, err := f.advertSvc.Update(ctx, a.ID.Hex(), input("Flat", 2), nil, vendorA)
	require.NoError(t, err)
	require.NoError(t, f.advertSvc.Delete(ctx, a.ID.Hex(), vendorA))

	assert.Equal(t, []string{event.AdvertCreated, event.AdvertUpdated, event.AdvertDeleted}, fired)
}
