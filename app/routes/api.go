// Package routes mounts the HTTP API.
package routes

import (
	"context"

	"github.com/shashiranjanraj/propelyu/app/controllers"
	"github.com/shashiranjanraj/propelyu/app/services"
	"github.com/shashiranjanraj/propelyu/pkg/auth"
	"github.com/shashiranjanraj/propelyu/pkg/ctx"
	"github.com/shashiranjanraj/propelyu/pkg/metrics"
	"github.com/shashiranjanraj/propelyu/pkg/middleware"
	"github.com/shashiranjanraj/propelyu/pkg/rbac"
	"github.com/shashiranjanraj/propelyu/pkg/router"
	"github.com/shashiranjanraj/propelyu/pkg/workerpool"
)

// Deps are the services the API is built on.
type Deps struct {
	Issuer      *auth.Issuer
	Users       *services.UserService
	Adverts     *services.AdvertService
	Suggestions *services.SuggestionService
	GenAI       *services.GenAIService
	Pool        *workerpool.Pool
}

// Resolver adapts UserService.Resolve to the authentication middleware.
func Resolver(users *services.UserService) middleware.UserResolver {
	return func(c context.Context, claims *auth.Claims) (middleware.User, error) {
		u, err := users.Resolve(c, claims)
		if err != nil {
			return middleware.User{}, err
		}
		return middleware.User{
			ID:       u.ID.Hex(),
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
		}, nil
	}
}

func RegisterAPI(r *router.Router, d Deps) {
	authn := middleware.Authenticate(d.Issuer, Resolver(d.Users))

	userController := controllers.NewUserController(d.Users)
	advertController := controllers.NewAdvertController(d.Adverts)
	aiController := controllers.NewAIController(d.Suggestions, d.Pool)
	genaiController := controllers.NewGenAIController(d.GenAI)

	r.Get("/", "home", ctx.Wrap(controllers.Home))
	r.HandleFunc("/metrics", metrics.Handler())

	users := r.Group("/users")
	users.Post("/register", "users.register", ctx.Wrap(userController.Register))
	users.Post("/login", "users.login", ctx.Wrap(userController.Login))

	adverts := r.Group("/adverts")
	adverts.Get("", "adverts.index", ctx.Wrap(advertController.Index))
	adverts.Post("", "adverts.store", ctx.Wrap(advertController.Store),
		authn, rbac.HasPermission(rbac.PostAdvert))
	adverts.Get("/vendor", "adverts.vendor", ctx.Wrap(advertController.Vendor),
		authn, rbac.HasRole(rbac.RoleVendor))
	adverts.Get("/{id}", "adverts.show", ctx.Wrap(advertController.Show))
	adverts.Get("/{id}/similar", "adverts.similar", ctx.Wrap(advertController.Similar))
	adverts.Put("/{id}", "adverts.update", ctx.Wrap(advertController.Update),
		authn, rbac.HasPermission(rbac.UpdateAdvert))
	adverts.Delete("/{id}", "adverts.destroy", ctx.Wrap(advertController.Destroy),
		authn, rbac.HasPermission(rbac.DeleteAdvert))

	ai := r.Group("/ai")
	ai.Post("/suggest-price", "ai.suggest_price", ctx.Wrap(aiController.SuggestPrice))
	ai.Get("/similar-houses/{id}", "ai.similar_houses", ctx.Wrap(aiController.SimilarHouses))
	ai.Post("/retrain-model", "ai.retrain", ctx.Wrap(aiController.Retrain),
		authn, rbac.HasPermission(rbac.RetrainModel))

	r.Post("/genai/generate-text", "genai.generate_text", ctx.Wrap(genaiController.GenerateText), authn)
}
