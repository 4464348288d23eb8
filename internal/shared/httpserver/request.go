package httpserver

import (
	"fmt"

	"github.com/cristianortiz/harvestBid/internal/shared/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserHeader carries the caller identity, set by the gateway after authentication.
const UserHeader = "X-User-ID"

var (
	validate = validator.New()

	errMissingUser = apperr.New(apperr.ErrAuthorization, "missing or invalid "+UserHeader+" header")
)

// UserID reads the authenticated caller from the request.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Get(UserHeader))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errMissingUser
	}
	return id, nil
}

// ParamID parses a uuid path parameter.
func ParamID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a uuid", apperr.ErrValidation, name)
	}
	return id, nil
}

// BindJSON decodes the body into dst and runs its validate tags.
func BindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: malformed body: %v", apperr.ErrValidation, err)
	}
	return Validate(dst)
}

// BindQuery decodes the query string into dst and runs its validate tags.
func BindQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return fmt.Errorf("%w: malformed query: %v", apperr.ErrValidation, err)
	}
	return Validate(dst)
}

func Validate(dst any) error {
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return nil
}
