// Package ctx provides the request context handed to controllers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context:
//
//	func (h *AdvertController) Show(c *ctx.Context) {
//	    advert, err := h.adverts.Get(c.Context(), c.Param("id"))
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.Success(advert)
//	}
//
//	router.Get("/adverts/{id}", "adverts.show", ctx.Wrap(h.Show))
package ctx

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/propelyu/pkg/apperr"
	"github.com/shashiranjanraj/propelyu/pkg/bind"
	"github.com/shashiranjanraj/propelyu/pkg/middleware"
	"github.com/shashiranjanraj/propelyu/pkg/response"
	"github.com/shashiranjanraj/propelyu/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a trimmed query-string value, "" if absent.
func (c *Context) Query(key string) string {
	return strings.TrimSpace(c.R.URL.Query().Get(key))
}

// QueryInt64 parses an integer query parameter, def when absent.
func (c *Context) QueryInt64(key string, def int64) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.InvalidInput("%s must be an integer", key)
	}
	return n, nil
}

// QueryFloat parses an optional numeric query parameter.
func (c *Context) QueryFloat(key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.InvalidInput("%s must be a number", key)
	}
	return &f, nil
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// User returns the authenticated user set by middleware.Authenticate.
func (c *Context) User() (middleware.User, bool) {
	return middleware.UserFromCtx(c.R.Context())
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes and validates the JSON body into dest. On failure the
// response is already written and false is returned.
//
//	var in SuggestRequest
//	if !c.BindJSON(&in) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.W, c.R, dest)
	return c.bound(errs, err)
}

// BindForm is BindJSON for urlencoded and multipart bodies.
func (c *Context) BindForm(dest any) bool {
	errs, err := bind.Form(c.W, c.R, dest)
	return c.bound(errs, err)
}

// FormFile returns an uploaded file's bytes, nil when not sent. Call after
// BindForm.
func (c *Context) FormFile(field string) ([]byte, bool) {
	data, err := bind.File(c.R, field)
	if err != nil {
		c.Fail(apperr.InvalidInput("Could not read the %s upload.", field))
		return nil, false
	}
	return data, true
}

func (c *Context) bound(errs map[string]string, err error) bool {
	switch {
	case err != nil && bind.TooLarge(err):
		response.Error(c.W, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	case err != nil:
		response.Error(c.W, http.StatusBadRequest, err.Error())
		return false
	case validate.HasErrors(errs):
		response.ValidationError(c.W, errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// Success sends a 200 envelope with data.
func (c *Context) Success(data any) { response.Success(c.W, data) }

// SuccessWith sends a 200 envelope carrying both a message and data.
func (c *Context) SuccessWith(msg string, data any) {
	response.JSON(c.W, http.StatusOK, response.Envelope{Message: msg, Data: data})
}

// Message sends a 200 envelope with only a message.
func (c *Context) Message(msg string) { response.Message(c.W, msg) }

// Created sends a 201 envelope.
func (c *Context) Created(msg string, data any) { response.Created(c.W, msg, data) }

// Accepted sends a 202 envelope.
func (c *Context) Accepted(msg string) { response.Accepted(c.W, msg) }

// Fail writes err through response.Fail.
func (c *Context) Fail(err error) { response.Fail(c.W, c.R, err) }

// Error sends an error envelope with the given status.
func (c *Context) Error(code int, msg string) { response.Error(c.W, code, msg) }
