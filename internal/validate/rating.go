package validate

import (
	"errors"
	"math"
)

// ErrInvalidRating indicates a rating outside the 1-5 star scale.
var ErrInvalidRating = errors.New("rating must be a whole number from 1 to 5")

// Rating validates a star rating. Only whole values between 1 and 5
// inclusive are accepted.
func Rating(r float64) (int, error) {
	if r < 1 || r > 5 || r != math.Trunc(r) {
		return 0, ErrInvalidRating
	}
	return int(r), nil
}
