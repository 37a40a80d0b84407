package media

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fedragon/go-imgsift/internal/models"
)

var ratioPattern = regexp.MustCompile(`^\d+:\d+$`)

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Reduce returns width:height in lowest terms.
func Reduce(width, height int) (models.AspectRatio, error) {
	if width <= 0 || height <= 0 {
		return models.AspectRatio{}, fmt.Errorf("%w: %dx%d", models.ErrInvalidDimensions, width, height)
	}

	d := gcd(width, height)
	return models.AspectRatio{Width: width / d, Height: height / d}, nil
}

// ParseRatio parses a "W:H" string and reduces it.
func ParseRatio(s string) (models.AspectRatio, error) {
	s = strings.TrimSpace(s)
	if !ratioPattern.MatchString(s) {
		return models.AspectRatio{}, fmt.Errorf("%w: aspect ratio %q is not of the form W:H", models.ErrInvalidConfig, s)
	}

	parts := strings.SplitN(s, ":", 2)
	w, errW := strconv.Atoi(parts[0])
	h, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil {
		return models.AspectRatio{}, fmt.Errorf("%w: aspect ratio %q is out of range", models.ErrInvalidConfig, s)
	}

	r, err := Reduce(w, h)
	if err != nil {
		return models.AspectRatio{}, fmt.Errorf("%w: aspect ratio %q must have positive terms", models.ErrInvalidConfig, s)
	}

	return r, nil
}

func ParseRatios(values []string) (models.RatioSet, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: at least one aspect ratio is required", models.ErrInvalidConfig)
	}

	set := make(models.RatioSet, len(values))
	for _, v := range values {
		r, err := ParseRatio(v)
		if err != nil {
			return nil, err
		}
		set[r] = struct{}{}
	}

	return set, nil
}

// Matches is exact membership of the reduced ratio; there is no tolerance.
func Matches(r models.AspectRatio, desired models.RatioSet) bool {
	return desired.Contains(r)
}
