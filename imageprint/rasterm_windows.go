package imageprint

import (
	"image"
	"io"
)

// PrintRasTerm is not supported on windows; it never prints.
func PrintRasTerm(w io.Writer, i image.Image) bool {
	return false
}
