package bind_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/propelyu/config"
	"github.com/shashiranjanraj/propelyu/pkg/bind"
)

type advertForm struct {
	Title string   `form:"title" validate:"required"`
	Price float64  `form:"price" validate:"gte=0"`
	Limit int64    `form:"limit"`
	Max   *float64 `form:"max"`
}

type suggestBody struct {
	Description string `json:"description" validate:"required"`
}

func TestJSONBindsAndValidates(t *testing.T) {
	var in suggestBody
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"description":"two rooms"}`))
	errs, err := bind.JSON(httptest.NewRecorder(), r, &in)
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, "two rooms", in.Description)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	errs, err = bind.JSON(httptest.NewRecorder(), r, &suggestBody{})
	require.NoError(t, err)
	assert.Contains(t, errs, "description")
}

func TestJSONMalformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	_, err := bind.JSON(httptest.NewRecorder(), r, &suggestBody{})
	assert.Error(t, err)
}

func TestJSONTooLarge(t *testing.T) {
	config.Set("MAX_BODY_BYTES", "16")
	defer config.Set("MAX_BODY_BYTES", "")

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"description":"`+strings.Repeat("x", 64)+`"}`))
	_, err := bind.JSON(httptest.NewRecorder(), r, &suggestBody{})
	require.Error(t, err)
	assert.True(t, bind.TooLarge(err))
}

func TestFormURLEncoded(t *testing.T) {
	body := url.Values{"title": {" Flat "}, "price": {"1200.5"}, "limit": {"3"}, "max": {"9"}}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var in advertForm
	errs, err := bind.Form(httptest.NewRecorder(), r, &in)
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, "Flat", in.Title)
	assert.Equal(t, 1200.5, in.Price)
	assert.Equal(t, int64(3), in.Limit)
	require.NotNil(t, in.Max)
	assert.Equal(t, 9.0, *in.Max)
}

func TestFormFieldErrors(t *testing.T) {
	body := url.Values{"price": {"cheap"}, "limit": {"1.5"}}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	errs, err := bind.Form(httptest.NewRecorder(), r, &advertForm{})
	require.NoError(t, err)
	assert.Equal(t, "The price must be a number.", errs["price"])
	assert.Equal(t, "The limit must be an integer.", errs["limit"])
	assert.Equal(t, "The title field is required.", errs["title"])
}

func TestFormNaNRejected(t *testing.T) {
	body := url.Values{"title": {"x"}, "price": {"NaN"}}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	errs, err := bind.Form(httptest.NewRecorder(), r, &advertForm{})
	require.NoError(t, err)
	assert.Contains(t, errs, "price")
}

func TestMultipartWithFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Loft"))
	fw, err := mw.CreateFormFile("image", "a.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	var in advertForm
	errs, err := bind.Form(httptest.NewRecorder(), r, &in)
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, "Loft", in.Title)

	data, err := bind.File(r, "image")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	missing, err := bind.File(r, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
