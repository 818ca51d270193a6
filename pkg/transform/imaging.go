package transform

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
)

const (
	labelMargin = 8
)

// Options for the imaging transformer.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// Imaging shrinks images to fit within a bounding box, stamps the owner's name in
// the bottom right corner & re-encodes as jpeg.
type Imaging struct {
	opts Options
	face font.Face
}

func NewImaging(opts Options) *Imaging {
	return &Imaging{opts: opts, face: basicfont.Face7x13}
}

func (i *Imaging) ContentType() string {
	return "image/jpeg"
}

func (i *Imaging) Transform(ctx context.Context, data []byte, p Params) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w no image data", errors.ErrInvalidArg)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w decoding image: %v", errors.ErrInvalidArg, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := imaging.Fit(src, i.opts.MaxWidth, i.opts.MaxHeight, imaging.Lanczos)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	i.label(img, label(p))

	var buf bytes.Buffer
	err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(i.opts.Quality))
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// label draws text in the bottom right, with a drop shadow so it reads on light & dark images.
// Text that won't fit is skipped.
func (i *Imaging) label(img *image.NRGBA, text string) {
	if text == "" {
		return
	}
	width := font.MeasureString(i.face, text).Ceil()
	height := i.face.Metrics().Height.Ceil()
	b := img.Bounds()
	if width+2*labelMargin > b.Dx() || height+2*labelMargin > b.Dy() {
		return
	}

	x := b.Max.X - width - labelMargin
	y := b.Max.Y - labelMargin - i.face.Metrics().Descent.Ceil()

	for _, layer := range []struct {
		c      color.Color
		offset int
	}{
		{color.RGBA{0, 0, 0, 160}, 1},
		{color.RGBA{255, 255, 255, 220}, 0},
	} {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(layer.c),
			Face: i.face,
			Dot:  fixed.P(x+layer.offset, y+layer.offset),
		}
		d.DrawString(text)
	}
}

// label is the watermark text for the given params.
func label(p Params) string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name == "" {
		return ""
	}
	return "(c) " + name
}
