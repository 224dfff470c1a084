package compress

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/webp"
)

// ImageResult reports a finished image compression.
type ImageResult struct {
	Data        []byte
	ContentType string
	Extension   string
}

// CompressImage re-encodes an image at the requested quality and format.
// When a target weight is set, the quality drops by a fixed step per
// attempt until the output fits or the floor is reached; the smallest
// result is returned as best effort. A target above the input size is
// clamped to the input size. Re-encoding drops any embedded
// metadata regardless of the removeMetadata flag.
func CompressImage(data []byte, opts Options) (*ImageResult, error) {
	src, sourceFormat, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	format := outputFormat(opts.ForceFormat, sourceFormat)
	img := prepare(src, opts)

	best, err := encode(img, format, opts.Quality)
	if err != nil {
		return nil, err
	}

	if target := opts.TargetBytes(); target > 0 {
		// The input size caps the budget; a converted format cannot
		// fall back to the input bytes below, so quality drops instead.
		ceiling := target
		if len(data) < ceiling {
			ceiling = len(data)
		}

		quality := opts.Quality
		for attempt := 1; attempt < maxAttempts && len(best) > ceiling && quality > qualityFloor; attempt++ {
			quality -= qualityStep
			if quality < qualityFloor {
				quality = qualityFloor
			}

			candidate, err := encode(img, format, quality)
			if err != nil {
				return nil, err
			}
			if len(candidate) < len(best) {
				best = candidate
			}
		}
	}

	// When no format conversion or pixel transform is requested, an
	// output larger than the input is pure loss; keep the input bytes.
	if len(best) > len(data) && format == sourceFormat && !opts.Grayscale && opts.DPI >= referenceDPI {
		best = data
	}

	contentType, ext := formatMeta(format)
	return &ImageResult{Data: best, ContentType: contentType, Extension: ext}, nil
}

// outputFormat resolves the forced format against the decoded source
// format. Unknown source formats fall back to jpeg.
func outputFormat(force Format, source string) string {
	switch force {
	case FormatJPG:
		return "jpeg"
	case FormatWebP:
		return "webp"
	}

	switch source {
	case "jpeg", "png", "gif", "webp":
		return source
	default:
		return "jpeg"
	}
}

// prepare applies the grayscale conversion and the advisory DPI
// downscale before encoding.
func prepare(src image.Image, opts Options) image.Image {
	img := src

	if opts.DPI < referenceDPI {
		img = downscale(img, float64(opts.DPI)/referenceDPI)
	}

	if opts.Grayscale {
		bounds := img.Bounds()
		gray := image.NewGray(bounds)
		draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
		img = gray
	}

	return img
}

// downscale resizes by the given factor with bilinear interpolation.
func downscale(src image.Image, factor float64) image.Image {
	bounds := src.Bounds()
	width := int(float64(bounds.Dx()) * factor)
	height := int(float64(bounds.Dy()) * factor)
	if width < 1 || height < 1 {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("encode gif: %w", err)
		}
	case "webp":
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, format)
	}

	return buf.Bytes(), nil
}

func formatMeta(format string) (contentType, ext string) {
	switch format {
	case "png":
		return "image/png", "png"
	case "gif":
		return "image/gif", "gif"
	case "webp":
		return "image/webp", "webp"
	default:
		return "image/jpeg", "jpg"
	}
}
