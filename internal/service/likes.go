package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"bloglist/internal/models"
)

// maxLikes is the largest integer a JSON number carries exactly.
const maxLikes = 1<<53 - 1

// parseLikes interprets a decoded JSON likes value. ok is false when v is absent or not an
// integer. A negative integer or one beyond maxLikes is a validation error.
func parseLikes(v any) (likes int, ok bool, err error) {
	var n float64
	switch x := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		n = x
	case int:
		n = float64(x)
	case json.Number:
		f, perr := x.Float64()
		if perr != nil {
			return 0, false, nil
		}
		n = f
	case string:
		f, perr := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if perr != nil {
			return 0, false, nil
		}
		n = f
	default:
		return 0, false, nil
	}

	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return 0, false, nil
	}
	if n < 0 {
		return 0, false, models.NewValidationError("likes must not be negative")
	}
	if n > maxLikes {
		return 0, false, models.NewValidationError(fmt.Sprintf("likes must not exceed %d", maxLikes))
	}
	return int(n), true, nil
}
