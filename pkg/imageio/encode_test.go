package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 255, 0, 255})
	img.SetRGBA(0, 1, color.RGBA{0, 0, 255, 255})
	img.SetRGBA(1, 1, color.RGBA{12, 34, 56, 255})
	return img
}

func TestWritePPM(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePPM(&buf, testImage()); err != nil {
		t.Fatal(err)
	}

	expected := "P3\n2 2\n255\n" +
		"255 0 0\n" +
		"0 255 0\n" +
		"0 0 255\n" +
		"12 34 56\n"
	if buf.String() != expected {
		t.Errorf("Unexpected PPM output:\n%q\nexpected:\n%q", buf.String(), expected)
	}
}

func TestWritePPM_SubImageStartsAtItsOwnOrigin(t *testing.T) {
	sub := testImage().SubImage(image.Rect(1, 1, 2, 2))

	var buf bytes.Buffer
	if err := WritePPM(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "P3\n1 1\n255\n12 34 56\n" {
		t.Errorf("Unexpected PPM output %q", buf.String())
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
		wantErr  bool
	}{
		{"out/render.ppm", FormatPPM, false},
		{"render.PNG", FormatPNG, false},
		{"render.bmp", FormatBMP, false},
		{"render.tif", FormatTIFF, false},
		{"render.tiff", FormatTIFF, false},
		{"render.jpg", "", true},
		{"render", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, err := FormatFromPath(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("Expected ErrUnknownFormat, got %v", err)
				}
				return
			}
			if err != nil || format != tt.expected {
				t.Errorf("Expected %q, got %q (err %v)", tt.expected, format, err)
			}
		})
	}
}

func TestEncode_DecodesBack(t *testing.T) {
	src := testImage()

	for _, format := range []Format{FormatPNG, FormatBMP, FormatTIFF} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, format); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			decoded, name, err := image.Decode(&buf)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if name != string(format) {
				t.Errorf("Expected decoder %q, got %q", format, name)
			}

			for y := 0; y < 2; y++ {
				for x := 0; x < 2; x++ {
					r1, g1, b1, _ := src.At(x, y).RGBA()
					r2, g2, b2, _ := decoded.At(x, y).RGBA()
					if r1 != r2 || g1 != g2 || b1 != b2 {
						t.Errorf("Pixel (%d,%d) changed: %v vs %v", x, y, src.At(x, y), decoded.At(x, y))
					}
				}
			}
		})
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, testImage(), Format("gif")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "render.ppm")
	if err := Save(path, testImage()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("P3\n2 2\n255\n")) {
		t.Errorf("Unexpected file contents %q", data)
	}

	if err := Save(filepath.Join(t.TempDir(), "render.gif"), testImage()); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}
