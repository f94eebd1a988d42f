// Package tiles restores page images whose tile grid was shuffled by
// the viewer. Pages arrive split into a 4x4 grid of cells with the
// off-diagonal cells mirrored across the diagonal; swapping each pair
// back is its own inverse, so the same transform scrambles and
// restores.
package tiles

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/gif" // needed to decode gif pages
	"image/jpeg"
	"image/png"

	"github.com/pkg/errors"
	_ "golang.org/x/image/webp" // needed to decode webp
)

const (
	gridSize  = 4
	cellAlign = 8
)

// Unscramble decodes the image, swaps the mirrored cell pairs back into
// place and re-encodes. Cell extents are rounded down to a multiple of
// eight; the remainder strips at the right and bottom edges are never
// shuffled and pass through untouched. Images too small to hold the
// grid are returned unchanged.
func Unscramble(data []byte) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding page image")
	}

	bounds := src.Bounds()
	cellWidth := bounds.Dx() / (gridSize * cellAlign) * cellAlign
	cellHeight := bounds.Dy() / (gridSize * cellAlign) * cellAlign

	if cellWidth == 0 || cellHeight == 0 {
		return data, nil
	}

	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(img, img.Bounds(), src, bounds.Min, draw.Src)

	for i := 0; i < gridSize; i++ {
		for j := i + 1; j < gridSize; j++ {
			swapRegions(img, i*cellWidth, j*cellHeight, j*cellWidth, i*cellHeight, cellWidth, cellHeight)
		}
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	}
	if err != nil {
		return nil, errors.Wrap(err, "encoding restored image")
	}

	return buf.Bytes(), nil
}

// swapRegions exchanges two equally sized rectangles in place. The
// regions never overlap; each belongs to exactly one mirrored pair.
func swapRegions(img *image.RGBA, sourceX, sourceY, targetX, targetY, width, height int) {
	for y := 0; y < height; y++ {
		sourceOff := img.PixOffset(sourceX, sourceY+y)
		targetOff := img.PixOffset(targetX, targetY+y)

		sourceRow := img.Pix[sourceOff : sourceOff+width*4]
		targetRow := img.Pix[targetOff : targetOff+width*4]

		for x := range sourceRow {
			sourceRow[x], targetRow[x] = targetRow[x], sourceRow[x]
		}
	}
}
