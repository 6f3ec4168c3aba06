package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned for an output format or file extension that cannot be written
var ErrUnknownFormat = errors.New("unknown image format")

// Format names an output encoding
type Format string

const (
	FormatPPM  Format = "ppm"
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// Formats lists every supported format
func Formats() []Format {
	return []Format{FormatPPM, FormatPNG, FormatBMP, FormatTIFF}
}

// ParseFormat resolves a format name, case-insensitively. "tif" is accepted for TIFF.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "ppm":
		return FormatPPM, nil
	case "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Encode writes img to w in the given format
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPPM:
		return WritePPM(w, img)
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Save writes img to path, choosing the format from the extension and creating parent directories
func Save(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(file)
	if err := Encode(w, img, format); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
