package stream

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	placeholderWidth  = 640
	placeholderHeight = 480
)

// Placeholder renders the frame shown while a subject has never reported:
// a black 640x480 JPEG with a waiting message.
func Placeholder(subjectID string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	// Zero value of RGBA is already opaque-black per pixel except alpha;
	// fill alpha so the JPEG encodes as solid black.
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
	}

	label := fmt.Sprintf("Waiting for %s...", subjectID)
	width := drawer.MeasureString(label)
	drawer.Dot = fixed.Point26_6{
		X: (fixed.I(placeholderWidth) - width) / 2,
		Y: fixed.I(placeholderHeight / 2),
	}
	drawer.DrawString(label)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
