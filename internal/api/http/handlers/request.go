package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/erms/internal/api/dto"
	"github.com/spec-kit/erms/internal/domain"
	apperrors "github.com/spec-kit/erms/pkg/util/errorutil"
)

// parseBody decodes the JSON body into req and runs its validate tags.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(req)
}

// optionalQuery returns a pointer to the trimmed query value, or nil when absent.
func optionalQuery(c *fiber.Ctx, key string) *string {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	return &value
}

// dateQuery parses an optional YYYY-MM-DD query parameter.
func dateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := optionalQuery(c, key)
	if raw == nil {
		return nil, nil
	}
	d, err := domain.ParseDate(*raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date", map[string]any{key: "must be formatted YYYY-MM-DD"})
	}
	return &d, nil
}

// dateField parses a body date already checked by the validator.
func dateField(name, value string) (time.Time, error) {
	d, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid date", map[string]any{name: "must be formatted YYYY-MM-DD"})
	}
	return d, nil
}
