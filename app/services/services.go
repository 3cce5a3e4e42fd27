// Package services holds the application use cases. Handlers translate HTTP
// into these calls; repositories and collaborators are injected.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/propelyu/app/repositories"
	"github.com/shashiranjanraj/propelyu/pkg/apperr"
)

// Actor is the authenticated user a call is made on behalf of.
type Actor struct {
	ID   string
	Role string
}

// MediaUploader stores image bytes and returns a durable URL.
type MediaUploader interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// ImageGenerator synthesises an image from a text prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// TextGenerator completes a text prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// storeErr maps repository sentinels onto the error taxonomy. Anything else
// is wrapped and left for a 500.
func storeErr(err error, op, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound("%s", notFound)
	case apperr.KindOf(err) != apperr.KindInternal:
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
