package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"mailview/utils"
)

// queryInt reads an integer query parameter and enforces inclusive bounds.
func queryInt(c *fiber.Ctx, key string, def, min, max int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < min || value > max {
		return 0, utils.ValidationError(key+" must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max), err)
	}

	return value, nil
}

// paramID reads a positive integer path parameter.
func paramID(c *fiber.Ctx, key string) (int64, error) {
	value, err := strconv.ParseInt(c.Params(key), 10, 64)
	if err != nil || value < 1 {
		return 0, utils.ValidationError("Invalid email ID", err)
	}

	return value, nil
}
