package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/propelyu/app/repositories"
	"github.com/shashiranjanraj/propelyu/pkg/auth"
	"github.com/shashiranjanraj/propelyu/pkg/cache"
	"github.com/shashiranjanraj/propelyu/pkg/event"
)

var errCollaborator = errors.New("collaborator down")

type fakeMedia struct {
	mu      sync.Mutex
	uploads [][]byte
	err     error
}

func (m *fakeMedia) Upload(_ context.Context, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.uploads = append(m.uploads, data)
	return fmt.Sprintf("https://media.test/%d.png", len(m.uploads)), nil
}

func (m *fakeMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	err     error
}

func (g *fakeGenerator) GenerateImage(_ context.Context, prompt string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return nil, g.err
	}
	return []byte("generated:" + prompt), nil
}

func (g *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "echo: " + prompt, nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type fixture struct {
	users     *repositories.MemoryUserRepository
	adverts   *repositories.MemoryAdvertRepository
	media     *fakeMedia
	gen       *fakeGenerator
	bus       *event.Bus
	issuer    *auth.Issuer
	userSvc   *UserService
	advertSvc *AdvertService
	suggest   *SuggestionService
}

func newFixture() *fixture {
	f := &fixture{
		users:   repositories.NewMemoryUserRepository(),
		adverts: repositories.NewMemoryAdvertRepository(),
		media:   &fakeMedia{},
		gen:     &fakeGenerator{},
		bus:     event.NewBus(),
		issuer:  auth.NewIssuer("test-secret"),
	}
	f.userSvc = NewUserService(f.users, f.issuer)
	f.advertSvc = NewAdvertService(f.adverts, f.media, f.gen, cache.NewMemory(), time.Minute, f.bus)
	f.suggest = NewSuggestionService(f.adverts)
	return f
}

var (
	vendorA = Actor{ID: "64b000000000000000000001", Role: "vendor"}
	vendorB = Actor{ID: "64b000000000000000000002", Role: "vendor"}
	admin   = Actor{ID: "64b000000000000000000003", Role: "admin"}
	guest   = Actor{ID: "64b000000000000000000004", Role: "guest"}
)

func input(title string, price float64) AdvertInput {
	return AdvertInput{
		Title:       title,
		Description: "A lovely place called " + title,
		Price:       price,
		Category:    "apt",
		Location:    "Accra",
	}
}
