// Package validation wires go-playground/validator into Echo and guards
// image uploads before they reach storage.
package validation

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"

	"github.com/banseok/hajaro"
	"github.com/go-playground/validator/v10"
)

// Validator implements echo.Validator over struct validation tags.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator ready to assign to e.Validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks a bound request struct and converts tag failures into a
// field-keyed invalid error the transport layer renders as 400.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return hajaro.Invalid("invalid request body")
	}

	return hajaro.ErrorWithFields(FormatValidationErrors(validationErrors))
}

// FormatValidationErrors maps validator tag failures to readable messages
// keyed by the lowercased field name.
func FormatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	fields := make(map[string]string)

	for _, fieldErr := range validationErrors {
		name := strings.ToLower(fieldErr.Field())

		switch fieldErr.Tag() {
		case "required":
			fields[name] = "is required"
		case "email":
			fields[name] = "must be a valid email address"
		case "uuid":
			fields[name] = "must be a valid UUID"
		case "min":
			if fieldErr.Type().Kind() == reflect.String {
				fields[name] = fmt.Sprintf("must be at least %s characters", fieldErr.Param())
			} else {
				fields[name] = fmt.Sprintf("must be at least %s", fieldErr.Param())
			}
		case "max":
			if fieldErr.Type().Kind() == reflect.String {
				fields[name] = fmt.Sprintf("must be no more than %s characters", fieldErr.Param())
			} else {
				fields[name] = fmt.Sprintf("must be no more than %s", fieldErr.Param())
			}
		case "oneof":
			fields[name] = fmt.Sprintf("must be one of: %s", fieldErr.Param())
		case "gte":
			fields[name] = fmt.Sprintf("must be greater than or equal to %s", fieldErr.Param())
		case "lte":
			fields[name] = fmt.Sprintf("must be less than or equal to %s", fieldErr.Param())
		default:
			fields[name] = fmt.Sprintf("failed validation: %s", fieldErr.Tag())
		}
	}

	return fields
}

// MaxImageSize caps defect photo and signature uploads.
const MaxImageSize = 10 << 20 // 10 MiB

// allowedImageTypes are the MIME types accepted for uploaded imagery.
// The type is sniffed from content, not taken from the request header.
var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// ValidateImageUpload rejects oversized files and anything that does not
// sniff as an accepted image type.
func ValidateImageUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxImageSize {
		return hajaro.Invalid("image exceeds the maximum size of %d bytes", MaxImageSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return hajaro.Invalid("could not read uploaded file")
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil {
		return hajaro.Invalid("could not read uploaded file")
	}

	contentType := http.DetectContentType(buffer[:n])
	for _, allowed := range allowedImageTypes {
		if contentType == allowed {
			return nil
		}
	}

	return hajaro.Invalid("file type %s is not allowed (allowed types: %s)",
		contentType, strings.Join(allowedImageTypes, ", "))
}
