package media

import "github.com/fedragon/go-imgsift/internal/models"

// Passes reports whether both axes meet their minimum independently.
func Passes(width, height int, t models.Threshold) bool {
	return width >= t.MinWidth && height >= t.MinHeight
}
