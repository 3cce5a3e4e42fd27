package controllers

import (
	"github.com/shashiranjanraj/propelyu/app/repositories"
	"github.com/shashiranjanraj/propelyu/app/services"
	"github.com/shashiranjanraj/propelyu/pkg/ctx"
)

type advertForm struct {
	Title       string   `form:"title"       validate:"required"`
	Description string   `form:"description" validate:"required"`
	Price       *float64 `form:"price"       validate:"required"`
	Category    string   `form:"category"    validate:"required"`
	Location    string   `form:"location"    validate:"required"`
}

func (f advertForm) input() services.AdvertInput {
	in := services.AdvertInput{
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
		Location:    f.Location,
	}
	if f.Price != nil {
		in.Price = *f.Price
	}
	return in
}

type AdvertController struct {
	adverts *services.AdvertService
}

func NewAdvertController(adverts *services.AdvertService) *AdvertController {
	return &AdvertController{adverts: adverts}
}

// Index handles GET /adverts?search&category&price&limit&skip.
func (h *AdvertController) Index(c *ctx.Context) {
	q := repositories.AdvertQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	}
	var err error
	if q.Price, err = c.QueryFloat("price"); err != nil {
		c.Fail(err)
		return
	}
	if q.Limit, err = c.QueryInt64("limit", repositories.DefaultLimit); err != nil {
		c.Fail(err)
		return
	}
	if q.Skip, err = c.QueryInt64("skip", 0); err != nil {
		c.Fail(err)
		return
	}

	ads, err := h.adverts.List(c.Context(), q)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(ads)
}

// Store handles multipart POST /adverts. The image part is optional.
func (h *AdvertController) Store(c *ctx.Context) {
	var form advertForm
	if !c.BindForm(&form) {
		return
	}
	image, ok := c.FormFile("image")
	if !ok {
		return
	}

	advert, err := h.adverts.Create(c.Context(), form.input(), image, actor(c))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created("Advert added successfully", advert)
}

// Vendor handles GET /adverts/vendor.
func (h *AdvertController) Vendor(c *ctx.Context) {
	ads, err := h.adverts.ByOwner(c.Context(), actor(c))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(ads)
}

// Show handles GET /adverts/{id}.
func (h *AdvertController) Show(c *ctx.Context) {
	advert, err := h.adverts.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(advert)
}

// Similar handles GET /adverts/{id}/similar?limit&skip.
func (h *AdvertController) Similar(c *ctx.Context) {
	limit, err := c.QueryInt64("limit", repositories.DefaultLimit)
	if err != nil {
		c.Fail(err)
		return
	}
	skip, err := c.QueryInt64("skip", 0)
	if err != nil {
		c.Fail(err)
		return
	}

	ads, err := h.adverts.Similar(c.Context(), c.Param("id"), limit, skip)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(ads)
}

// Update handles multipart PUT /adverts/{id}.
func (h *AdvertController) Update(c *ctx.Context) {
	var form advertForm
	if !c.BindForm(&form) {
		return
	}
	image, ok := c.FormFile("image")
	if !ok {
		return
	}

	advert, err := h.adverts.Update(c.Context(), c.Param("id"), form.input(), image, actor(c))
	if err != nil {
		c.Fail(err)
		return
	}
	c.SuccessWith("Advert updated successfully", advert)
}

// Destroy handles DELETE /adverts/{id}.
func (h *AdvertController) Destroy(c *ctx.Context) {
	if err := h.adverts.Delete(c.Context(), c.Param("id"), actor(c)); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Advert deleted successfully!")
}

// actor is the authenticated caller. Routes mounting these handlers sit
// behind middleware.Authenticate; a missing user yields an empty actor that
// every permission check rejects.
func actor(c *ctx.Context) services.Actor {
	u, _ := c.User()
	return services.Actor{ID: u.ID, Role: u.Role}
}
