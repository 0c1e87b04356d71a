package handler

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"go-inventory-tracker/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// secretFields are never echoed back in a form.
var secretFields = map[string]bool{
	"password":     true,
	"old_password": true,
	"new_password": true,
}

// bind parses the request body into dst. A value that cannot be converted to
// its field type becomes a ValidationError on that field, with the submitted
// values attached for redisplay. dst must be a pointer to a struct.
func bind(c *fiber.Ctx, dst interface{}) error {
	err := c.BodyParser(dst)
	if err == nil {
		return nil
	}

	elem := reflect.TypeOf(dst).Elem()
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON) {
		raw := map[string]json.RawMessage{}
		if json.Unmarshal(c.Body(), &raw) != nil {
			return errBadBody
		}
		field, ok := badJSONField(elem, raw)
		if !ok {
			return errBadBody
		}
		form := make(map[string]json.RawMessage, len(raw))
		for k, v := range raw {
			if !secretFields[k] {
				form[k] = v
			}
		}
		return withForm(conversionError(field, "json"), form)
	}

	var multi fiber.MultiError
	if !errors.As(err, &multi) {
		return errBadBody
	}
	field, ok := badFormField(elem, multi)
	if !ok {
		return errBadBody
	}
	return withForm(conversionError(field, "form"), submittedForm(c))
}

// badJSONField returns the first struct field whose raw value does not decode
// on its own.
func badJSONField(elem reflect.Type, raw map[string]json.RawMessage) (reflect.StructField, bool) {
	for i := 0; i < elem.NumField(); i++ {
		f := elem.Field(i)
		v, ok := raw[tagName(f, "json")]
		if !ok {
			continue
		}
		if json.Unmarshal(v, reflect.New(f.Type).Interface()) != nil {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// badFormField returns the first struct field, in declaration order, that
// the form decoder rejected.
func badFormField(elem reflect.Type, multi fiber.MultiError) (reflect.StructField, bool) {
	for i := 0; i < elem.NumField(); i++ {
		f := elem.Field(i)
		if _, ok := multi[tagName(f, "form")]; ok {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func conversionError(f reflect.StructField, tag string) error {
	t := f.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	msg := "Enter a valid value."
	switch {
	case t == decimalType:
		msg = "Enter a number."
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Uint64:
		msg = "Enter a whole number."
	}
	return &apperr.ValidationError{Field: tagName(f, tag), Message: msg}
}

func tagName(f reflect.StructField, tag string) string {
	name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
	if name == "" {
		return f.Name
	}
	return name
}

// submittedForm returns the raw url-encoded or multipart values.
func submittedForm(c *fiber.Ctx) map[string]string {
	form := map[string]string{}
	if mf, err := c.MultipartForm(); err == nil {
		for k, v := range mf.Value {
			if len(v) > 0 && !secretFields[k] {
				form[k] = v[0]
			}
		}
		return form
	}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		if key := string(k); !secretFields[key] {
			form[key] = string(v)
		}
	})
	return form
}
