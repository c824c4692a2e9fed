// Package imageart draws decoded images as half-block character art so image
// previews and thumbnails render inside the terminal.
package imageart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// upper half block: foreground paints the top pixel, background the bottom one
const halfBlock = "▀"

var ErrInvalidSize = errors.New("render size must be positive")

// Info describes an encoded image without decoding its pixels
type Info struct {
	Format string
	Width  int
	Height int
}

func (i Info) String() string {
	return fmt.Sprintf("%s %d×%d", strings.ToUpper(i.Format), i.Width, i.Height)
}

// Describe reads just the image header
func Describe(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("unsupported image: %w", err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Render decodes data and scales it to fit cols×rows terminal cells,
// keeping the aspect ratio. Each cell covers two vertical pixels.
func Render(data []byte, cols, rows int) (string, error) {
	if cols <= 0 || rows <= 0 {
		return "", ErrInvalidSize
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("unsupported image: %w", err)
	}

	return renderImage(img, cols, rows), nil
}

func renderImage(img image.Image, cols, rows int) string {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return ""
	}

	w, h := fit(srcW, srcH, cols, rows*2)

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			top := sample(img, x, y, w, h)
			style := lipgloss.NewStyle().Foreground(top)
			if y+1 < h {
				style = style.Background(sample(img, x, y+1, w, h))
			}
			sb.WriteString(style.Render(halfBlock))
		}
	}
	return sb.String()
}

// fit scales srcW×srcH down (never up) to fit inside maxW×maxH
func fit(srcW, srcH, maxW, maxH int) (int, int) {
	w, h := srcW, srcH
	if w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if h > maxH {
		w = w * maxH / h
		h = maxH
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// sample picks the nearest source pixel for target coordinate (x, y)
func sample(img image.Image, x, y, w, h int) lipgloss.Color {
	b := img.Bounds()
	sx := b.Min.X + x*b.Dx()/w
	sy := b.Min.Y + y*b.Dy()/h

	r, g, bl, _ := img.At(sx, sy).RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, bl>>8))
}

// Renderer implements ports.ImageRenderer
type Renderer struct{}

func (Renderer) Render(data []byte, cols, rows int) (string, error) {
	return Render(data, cols, rows)
}
