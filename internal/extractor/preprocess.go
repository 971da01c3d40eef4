package extractor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// decoders for image.Decode
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Preprocess prepares an image for OCR: downscale so the longest side is at most
// maxDim, grayscale, stretch contrast between the 1st and 99th percentile, sharpen.
// The result is PNG encoded.
func Preprocess(data []byte, maxDim int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	gray := toGray(src, maxDim)
	stretchContrast(gray)
	sharp := sharpen(gray)

	var buf bytes.Buffer
	if err := png.Encode(&buf, sharp); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

func toGray(src image.Image, maxDim int) *image.Gray {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	if longest := max(w, h); maxDim > 0 && longest > maxDim {
		w = max(1, w*maxDim/longest)
		h = max(1, h*maxDim/longest)
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == sb.Dx() && h == sb.Dy() {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	}
	return dst
}

func stretchContrast(img *image.Gray) {
	var hist [256]int
	for _, p := range img.Pix {
		hist[p]++
	}

	total := len(img.Pix)
	if total == 0 {
		return
	}
	lo, hi := percentile(hist, total, 0.01), percentile(hist, total, 0.99)
	if hi <= lo {
		return
	}

	span := hi - lo
	for i, p := range img.Pix {
		v := (int(p) - lo) * 255 / span
		img.Pix[i] = uint8(min(255, max(0, v)))
	}
}

func percentile(hist [256]int, total int, q float64) int {
	target := int(float64(total) * q)
	seen := 0
	for v, n := range hist {
		seen += n
		if seen > target {
			return v
		}
	}
	return 255
}

// sharpen applies the 3x3 kernel [0 -1 0; -1 5 -1; 0 -1 0]; border pixels are copied.
func sharpen(img *image.Gray) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	copy(out.Pix, img.Pix)

	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return out
	}

	at := func(x, y int) int { return int(img.Pix[y*img.Stride+x]) }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := 5*at(x, y) - at(x-1, y) - at(x+1, y) - at(x, y-1) - at(x, y+1)
			out.Pix[y*out.Stride+x] = uint8(min(255, max(0, v)))
		}
	}
	return out
}
