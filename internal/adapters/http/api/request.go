package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// itemRequest is the body of POST /items and PUT /items/{id}.
type itemRequest struct {
	Name string `json:"name" validate:"required,not_blank"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage returns a human-readable message for a validation error.
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "not_blank":
		return "must not be blank"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

func (req itemRequest) validate() error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%s: %s", fe.Field(), validationMessage(fe))
	}
	return err
}

// decodeItemRequest reads and validates an item body.
func decodeItemRequest(w http.ResponseWriter, r *http.Request) (itemRequest, error) {
	var req itemRequest
	if r.Body == nil {
		return req, errors.New("missing body")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errors.New("missing body")
		}
		return req, fmt.Errorf("invalid json: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return req, errors.New("invalid json: trailing data")
	}
	if err := req.validate(); err != nil {
		return req, err
	}
	return req, nil
}
