package xray

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const PlaceholderCaption = "Upload an image or load sample to start"

var PlaceholderBackground = color.NRGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}

var (
	captionOnce sync.Once
	captionMu   sync.Mutex
	captionFace font.Face
)

// faces are not safe for concurrent use; callers hold captionMu.
func loadCaptionFace() font.Face {
	captionOnce.Do(func() {
		captionFace = basicfont.Face7x13
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    16,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return
		}
		captionFace = face
	})
	return captionFace
}

// Placeholder fills a w×h buffer with the background colour and the caption
// centred horizontally on the middle baseline.
func Placeholder(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	if w <= 0 || h <= 0 {
		return img
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(PlaceholderBackground), image.Point{}, draw.Src)

	captionMu.Lock()
	defer captionMu.Unlock()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: loadCaptionFace(),
	}
	advance := d.MeasureString(PlaceholderCaption)
	d.Dot = fixed.Point26_6{
		X: fixed.I(w/2) - advance/2,
		Y: fixed.I(h / 2),
	}
	d.DrawString(PlaceholderCaption)
	return img
}
