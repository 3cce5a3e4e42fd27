package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shashiranjanraj/propelyu/app/models"
	"github.com/shashiranjanraj/propelyu/app/repositories"
	"github.com/shashiranjanraj/propelyu/pkg/apperr"
	"github.com/shashiranjanraj/propelyu/pkg/cache"
	"github.com/shashiranjanraj/propelyu/pkg/event"
	"github.com/shashiranjanraj/propelyu/pkg/logger"
	"github.com/shashiranjanraj/propelyu/pkg/rbac"
)

const advertNotFound = "Advert not found"

// AdvertInput is the editable part of an advert.
type AdvertInput struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Location    string
}

func (in AdvertInput) normalize() AdvertInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Location = strings.TrimSpace(in.Location)
	return in
}

// Validate reports every missing or out-of-range field at once.
func (in AdvertInput) Validate() error {
	fields := map[string]string{}
	for name, v := range map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"category":    in.Category,
		"location":    in.Location,
	} {
		if v == "" {
			fields[name] = "The " + name + " field is required."
		}
	}
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		fields["price"] = "The price must be a non-negative number."
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

type AdvertService struct {
	adverts  repositories.AdvertRepository
	media    MediaUploader
	images   ImageGenerator
	cache    cache.Cache
	cacheTTL time.Duration
	events   *event.Bus
}

func NewAdvertService(
	adverts repositories.AdvertRepository,
	media MediaUploader,
	images ImageGenerator,
	c cache.Cache,
	cacheTTL time.Duration,
	events *event.Bus,
) *AdvertService {
	return &AdvertService{
		adverts:  adverts,
		media:    media,
		images:   images,
		cache:    c,
		cacheTTL: cacheTTL,
		events:   events,
	}
}

func advertKey(id string) string { return "advert:" + id }

// List returns adverts matching q.
func (s *AdvertService) List(ctx context.Context, q repositories.AdvertQuery) ([]models.Advert, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	ads, err := s.adverts.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list adverts: %w", err)
	}
	return ads, nil
}

// Create stores a new advert owned by actor. Without an uploaded image one is
// generated from the title. The duplicate check runs before any external call.
func (s *AdvertService) Create(ctx context.Context, in AdvertInput, image []byte, actor Actor) (*models.Advert, error) {
	if err := rbac.RequirePermission(actor.Role, rbac.PostAdvert); err != nil {
		return nil, err
	}
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.adverts.ExistsByTitleOwner(ctx, in.Title, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("create advert: %w", err)
	}
	if exists {
		return nil, duplicateAdvert(in.Title)
	}

	url, err := s.storeImage(ctx, in.Title, image)
	if err != nil {
		return nil, err
	}

	a := &models.Advert{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Location:    in.Location,
		ImageURL:    url,
		Owner:       actor.ID,
	}
	if err := s.adverts.Create(ctx, a); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, duplicateAdvert(in.Title)
		}
		return nil, fmt.Errorf("create advert: %w", err)
	}

	s.events.Fire(event.AdvertCreated, *a)
	return a, nil
}

// Get returns one advert, read through the cache.
func (s *AdvertService) Get(ctx context.Context, id string) (*models.Advert, error) {
	if _, err := repositories.ParseID(id); err != nil {
		return nil, apperr.Unprocessable("Invalid advert ID received!")
	}
	a, err := cache.Remember(ctx, s.cache, advertKey(id), s.cacheTTL, func() (models.Advert, error) {
		a, err := s.adverts.FindByID(ctx, id)
		if err != nil {
			return models.Advert{}, err
		}
		return *a, nil
	})
	if err != nil {
		return nil, storeErr(err, "get advert", advertNotFound)
	}
	return &a, nil
}

// Update replaces the editable fields. The owner is preserved; the stored
// image is kept unless a new one is uploaded.
func (s *AdvertService) Update(ctx context.Context, id string, in AdvertInput, image []byte, actor Actor) (*models.Advert, error) {
	if err := rbac.RequirePermission(actor.Role, rbac.UpdateAdvert); err != nil {
		return nil, err
	}
	existing, err := s.loadOwned(ctx, id, actor, "You can update only your own advert")
	if err != nil {
		return nil, err
	}
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if in.Title != existing.Title {
		exists, err := s.adverts.ExistsByTitleOwner(ctx, in.Title, existing.Owner)
		if err != nil {
			return nil, fmt.Errorf("update advert: %w", err)
		}
		if exists {
			return nil, duplicateAdvert(in.Title)
		}
	}

	updated := *existing
	updated.Title = in.Title
	updated.Description = in.Description
	updated.Price = in.Price
	updated.Category = in.Category
	updated.Location = in.Location
	if len(image) > 0 {
		url, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		updated.ImageURL = url
	}

	if err := s.adverts.Replace(ctx, &updated); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, duplicateAdvert(in.Title)
		}
		return nil, storeErr(err, "update advert", "No advert found to update")
	}

	s.forget(ctx, id)
	s.events.Fire(event.AdvertUpdated, updated)
	return &updated, nil
}

// Delete removes an advert owned by actor (or any advert for an admin).
func (s *AdvertService) Delete(ctx context.Context, id string, actor Actor) error {
	if err := rbac.RequirePermission(actor.Role, rbac.DeleteAdvert); err != nil {
		return err
	}
	existing, err := s.loadOwned(ctx, id, actor, "You can delete only your own advert")
	if err != nil {
		return err
	}
	if err := s.adverts.Delete(ctx, id); err != nil {
		return storeErr(err, "delete advert", "No advert found to delete")
	}

	s.forget(ctx, id)
	s.events.Fire(event.AdvertDeleted, *existing)
	return nil
}

// ByOwner lists the vendor's own adverts.
func (s *AdvertService) ByOwner(ctx context.Context, actor Actor) ([]models.Advert, error) {
	if err := rbac.RequireRole(actor.Role, rbac.RoleVendor); err != nil {
		return nil, apperr.Forbidden("Only vendors can access their adverts")
	}
	ads, err := s.adverts.FindByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("vendor adverts: %w", err)
	}
	return ads, nil
}

// Similar lists other adverts sharing the target's title or description text.
func (s *AdvertService) Similar(ctx context.Context, id string, limit, skip int64) ([]models.Advert, error) {
	if limit < 0 || skip < 0 || limit > repositories.MaxLimit {
		return nil, apperr.InvalidInput("limit must be between 0 and %d and skip must not be negative", repositories.MaxLimit)
	}
	if limit == 0 {
		limit = repositories.DefaultLimit
	}
	target, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ads, err := s.adverts.FindSimilar(ctx, repositories.SimilarQuery{Target: *target, Limit: limit, Skip: skip})
	if err != nil {
		return nil, fmt.Errorf("similar adverts: %w", err)
	}
	return ads, nil
}

func (s *AdvertService) loadOwned(ctx context.Context, id string, actor Actor, denied string) (*models.Advert, error) {
	if _, err := repositories.ParseID(id); err != nil {
		return nil, apperr.Unprocessable("Invalid advert ID received!")
	}
	a, err := s.adverts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "load advert", advertNotFound)
	}
	if !rbac.CanModify(actor.ID, actor.Role, a.Owner) {
		return nil, apperr.Forbidden("%s", denied)
	}
	return a, nil
}

func (s *AdvertService) storeImage(ctx context.Context, title string, image []byte) (string, error) {
	if len(image) == 0 {
		generated, err := s.images.GenerateImage(ctx, title)
		if err != nil {
			return "", apperr.Unavailable(err, "Image generation failed")
		}
		image = generated
	}
	return s.upload(ctx, image)
}

func (s *AdvertService) upload(ctx context.Context, image []byte) (string, error) {
	url, err := s.media.Upload(ctx, image)
	if err != nil {
		return "", apperr.Unavailable(err, "Image upload failed")
	}
	return url, nil
}

func (s *AdvertService) forget(ctx context.Context, id string) {
	if err := s.cache.Del(ctx, advertKey(id)); err != nil {
		logger.WithCtx(ctx).Warn("advert cache invalidation failed", "id", id, "error", err)
	}
}

func duplicateAdvert(title string) error {
	return apperr.Conflict("Advert %q already exists for this owner!", title)
}
