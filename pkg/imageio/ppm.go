package imageio

import (
	"bufio"
	"fmt"
	"image"
	"io"
)

// WritePPM writes img as a plain-text P3 pixmap: the header "P3\n<width> <height>\n255\n"
// followed by one "R G B" line per pixel, top row first, left to right.
func WritePPM(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", bounds.Dx(), bounds.Dy()); err != nil {
		return err
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// 16-bit channels; the high byte is the 8-bit value
			r, g, b, _ := img.At(x, y).RGBA()
			if _, err := fmt.Fprintf(bw, "%d %d %d\n", r>>8, g>>8, b>>8); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}
