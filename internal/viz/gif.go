package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
)

// GIFOptions sizes an exported animation. Delay is in 100ths of a second.
type GIFOptions struct {
	Width, Height int
	Delay         int
	Every         int
}

func DefaultGIFOptions() GIFOptions {
	return GIFOptions{Width: 320, Height: 320, Delay: 4, Every: 1}
}

// WriteGIF renders frames of the scene, colored by the ramp, as an
// animated GIF. Every skips frames to keep the file small.
func WriteGIF(w io.Writer, s *Scene, cam *Camera, ramp Ramp, frames int, opts GIFOptions) error {
	if frames <= 0 {
		return errors.New("viz: no frames to render")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return errors.New("viz: gif size must be positive")
	}
	every := max(1, opts.Every)

	palette := color.Palette{color.RGBA{0x10, 0x10, 0x18, 0xff}}
	for _, c := range ramp.Colors {
		r, g, b := parseHex(string(c))
		palette = append(palette, color.RGBA{uint8(r), uint8(g), uint8(b), 0xff})
		if len(palette) == 256 {
			break
		}
	}
	if len(palette) == 1 {
		palette = append(palette, color.White)
	}
	steps := len(palette) - 1

	anim := &gif.GIF{}
	for f := 0; f < frames; f += every {
		img := image.NewPaletted(image.Rect(0, 0, opts.Width, opts.Height), palette)
		rasterize(img, s, cam, ramp, f, func(level float64) uint8 {
			i := int(level * float64(steps))
			return uint8(1 + max(0, min(steps-1, i)))
		})
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, opts.Delay)
	}
	return gif.EncodeAll(w, anim)
}

func WriteGIFFile(path string, s *Scene, cam *Camera, ramp Ramp, frames int, opts GIFOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteGIF(file, s, cam, ramp, frames, opts); err != nil {
		return err
	}
	return file.Close()
}

func rasterize(img *image.Paletted, s *Scene, cam *Camera, ramp Ramp, frame int, index func(float64) uint8) {
	b := img.Bounds()
	for _, p := range s.project(cam, ramp, frame, b.Dx(), b.Dy()) {
		idx := index(p.level)
		bresenham(p.x1, p.y1, p.x2, p.y2, func(x, y int) {
			if image.Pt(x, y).In(b) {
				img.SetColorIndex(x, y, idx)
			}
		})
	}
}
