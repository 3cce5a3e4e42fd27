// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/propelyu/config"
	"github.com/shashiranjanraj/propelyu/pkg/validate"
)

// maxBodyBytes returns the configured request body size limit (default 10 MB,
// enough for an advert image).
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "10485760"), 10, 64)
	if err != nil || n <= 0 {
		return 10 << 20
	}
	return n
}

// JSON decodes r.Body as JSON into dest and runs validation.
// Returns (errs, nil) when there are validation failures.
// Returns (nil, err) when the body is malformed JSON or too large.
func JSON(w http.ResponseWriter, r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes())

	if err = json.NewDecoder(r.Body).Decode(dest); err != nil {
		if tooLarge(err) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	return check(dest)
}

// Form fills dest from a urlencoded or multipart body using `form` tags.
// Supported field types are string, int64, float64 and *float64. A value
// that does not parse is reported as a field error.
func Form(w http.ResponseWriter, r *http.Request, dest interface{}) (errs map[string]string, err error) {
	if err = parseForm(w, r); err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return nil, errors.New("bind: destination must be a pointer to a struct")
	}
	rv = rv.Elem()
	rt := rv.Type()

	errs = make(map[string]string)
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.Tag.Get("form") == "" || !field.IsExported() {
			continue
		}
		name := validate.FieldName(field)
		raw := strings.TrimSpace(r.FormValue(name))
		if raw == "" {
			continue
		}
		if msg := setField(rv.Field(i), name, raw); msg != "" {
			errs[name] = msg
		}
	}

	verrs, _ := check(dest)
	for k, v := range verrs {
		if _, seen := errs[k]; !seen {
			errs[k] = v
		}
	}
	if validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

// File returns the bytes of an uploaded multipart file, or nil when the
// field was not sent. Form or ParseMultipart must have run first.
func File(r *http.Request, field string) ([]byte, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// TooLarge reports whether err came from the body size cap.
func TooLarge(err error) bool { return tooLarge(err) }

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes())

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBodyBytes()); err != nil {
			if tooLarge(err) {
				return err
			}
			return fmt.Errorf("invalid form: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		if tooLarge(err) {
			return err
		}
		return fmt.Errorf("invalid form: %w", err)
	}
	return nil
}

func setField(v reflect.Value, name, raw string) string {
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int64, reflect.Int:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Sprintf("The %s must be an integer.", name)
		}
		v.SetInt(n)
	case reflect.Float64:
		f, ok := parseNumber(raw)
		if !ok {
			return fmt.Sprintf("The %s must be a number.", name)
		}
		v.SetFloat(f)
	case reflect.Ptr:
		if v.Type().Elem().Kind() != reflect.Float64 {
			return ""
		}
		f, ok := parseNumber(raw)
		if !ok {
			return fmt.Sprintf("The %s must be a number.", name)
		}
		v.Set(reflect.ValueOf(&f))
	}
	return ""
}

func parseNumber(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func check(dest interface{}) (map[string]string, error) {
	errs := validate.Struct(dest)
	if validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
