package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/estudio-contable/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes validation errors name fields by their json/form tag.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	}
}

// ValidationDetails converts binding errors into per-field messages. Errors
// that are not validator errors (malformed JSON, wrong types) yield one
// detail without a field.
func ValidationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []dto.ValidationDetail{{Message: "Formato de solicitud inválido"}}
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	return details
}

// HandleValidationError answers 400 with the rejected fields
func HandleValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Datos de entrada inválidos", GetRequestID(c), ValidationDetails(err)))
}

func validationMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " es requerido"
	case "email":
		return field + " debe ser un email válido"
	case "min":
		if e.Kind() == reflect.String {
			return field + " debe tener al menos " + e.Param() + " caracteres"
		}
		return field + " debe ser mayor o igual a " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return field + " debe tener como máximo " + e.Param() + " caracteres"
		}
		return field + " debe ser menor o igual a " + e.Param()
	case "uuid":
		return field + " debe ser un UUID válido"
	case "oneof":
		return field + " debe ser uno de: " + e.Param()
	case "datetime":
		return field + " debe tener formato YYYY-MM-DD"
	default:
		return field + " es inválido"
	}
}
