package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	domain "loan-servicing-api/internal/domain/loan"
)

// writeDomainError maps the core error taxonomy onto HTTP responses. Anything
// outside the taxonomy is logged in full and flattened to the operation's
// generic message so internals never leak to clients.
func writeDomainError(c echo.Context, err error, generic string) error {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "loan not found"})
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: ve.Field, Message: ve.Reason}},
		})
	case errors.Is(err, domain.ErrInvalidState):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "loan is not editable"})
	default:
		log.Printf("%s: %v", generic, err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: generic})
	}
}
