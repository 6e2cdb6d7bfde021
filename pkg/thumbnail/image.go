package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// renderImage decodes data, scales it into a maxDim bounding box preserving
// aspect ratio, and re-encodes as JPEG at the given quality.
func (g *Generator) renderImage(data []byte, maxDim, quality int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := scaleBounds(bounds.Dx(), bounds.Dy(), maxDim)

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// scaleBounds fits w×h into a maxDim square preserving aspect ratio.
// Images already inside the box keep their dimensions.
func scaleBounds(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (g *Generator) upload(ctx context.Context, path string, data []byte) error {
	return g.store.Store(ctx, path, bytes.NewReader(data))
}
