package compress

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// CompressPDF rewrites the document's embedded image XObjects as
// quality-capped JPEGs, replacing a stream only when the re-encoded
// bytes are smaller. Objects that cannot be decoded are left untouched,
// so the output is always structurally equivalent to the input.
func CompressPDF(data []byte, opts Options, logger *slog.Logger) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.WriteObjectStream = true

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	if opts.RemoveMetadata {
		clearDocumentInfo(ctx)
	}

	rewritten := 0
	for objNr, obj := range ctx.Optimize.ImageObjects {
		if obj == nil || obj.ImageDict == nil {
			continue
		}
		ok, err := rewriteImageObject(obj.ImageDict, opts)
		if err != nil {
			logger.Debug("skipping pdf image object", "object", objNr, "reason", err)
			continue
		}
		if ok {
			rewritten++
		}
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	logger.Info("pdf compressed", "input_bytes", len(data), "output_bytes", buf.Len(), "images_rewritten", rewritten)
	return buf.Bytes(), nil
}

// clearDocumentInfo strips the document information dictionary entries
// other than the producer.
func clearDocumentInfo(ctx *model.Context) {
	if ctx.Info == nil {
		return
	}

	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		return
	}

	for key := range d {
		if key != "Producer" {
			d.Delete(key)
		}
	}
}

// rewriteImageObject decodes one image XObject and replaces its stream
// with a JPEG re-encode when that comes out smaller. Masked images and
// unsupported color configurations are reported as skip errors.
func rewriteImageObject(sd *types.StreamDict, opts Options) (bool, error) {
	if _, found := sd.Find("SMask"); found {
		return false, fmt.Errorf("image carries a soft mask")
	}
	if _, found := sd.Find("Mask"); found {
		return false, fmt.Errorf("image carries a stencil mask")
	}

	img, err := decodeImageObject(sd)
	if err != nil {
		return false, err
	}

	grayscale := opts.Grayscale
	if _, isGray := img.(*image.Gray); isGray {
		grayscale = true
	}
	if grayscale {
		bounds := img.Bounds()
		gray := image.NewGray(bounds)
		draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
		img = gray
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return false, fmt.Errorf("encode jpeg: %w", err)
	}

	if buf.Len() >= len(sd.Raw) {
		return false, nil
	}

	encoded := buf.Bytes()
	length := int64(len(encoded))

	sd.Raw = encoded
	sd.Content = nil
	sd.StreamLength = &length
	sd.FilterPipeline = []types.PDFFilter{{Name: "DCTDecode"}}

	sd.Dict["Length"] = types.Integer(len(encoded))
	sd.Dict["Filter"] = types.Name("DCTDecode")
	sd.Dict["BitsPerComponent"] = types.Integer(8)
	sd.Dict.Delete("DecodeParms")
	sd.Dict.Delete("Decode")

	if grayscale {
		sd.Dict["ColorSpace"] = types.Name("DeviceGray")
	} else {
		sd.Dict["ColorSpace"] = types.Name("DeviceRGB")
	}

	return true, nil
}

// decodeImageObject turns a supported image XObject stream into a Go
// image: DCT streams decode as JPEG, flate streams as raw 8-bit
// DeviceRGB or DeviceGray samples.
func decodeImageObject(sd *types.StreamDict) (image.Image, error) {
	filterName := ""
	if len(sd.FilterPipeline) == 1 {
		filterName = sd.FilterPipeline[0].Name
	}

	switch filterName {
	case "DCTDecode":
		img, err := jpeg.Decode(bytes.NewReader(sd.Raw))
		if err != nil {
			return nil, fmt.Errorf("decode embedded jpeg: %w", err)
		}
		return img, nil

	case "FlateDecode":
		return decodeFlateImage(sd)

	default:
		return nil, fmt.Errorf("unsupported filter pipeline")
	}
}

func decodeFlateImage(sd *types.StreamDict) (image.Image, error) {
	width := sd.IntEntry("Width")
	height := sd.IntEntry("Height")
	bpc := sd.IntEntry("BitsPerComponent")
	if width == nil || height == nil || bpc == nil || *bpc != 8 {
		return nil, fmt.Errorf("unsupported sample layout")
	}

	colorSpace := sd.NameEntry("ColorSpace")
	if colorSpace == nil {
		return nil, fmt.Errorf("non-name color space")
	}

	if err := sd.Decode(); err != nil {
		return nil, fmt.Errorf("decode stream: %w", err)
	}
	samples := sd.Content

	w, h := *width, *height

	switch *colorSpace {
	case "DeviceGray":
		if len(samples) < w*h {
			return nil, fmt.Errorf("truncated gray samples")
		}
		img := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+w], samples[y*w:(y+1)*w])
		}
		return img, nil

	case "DeviceRGB":
		if len(samples) < w*h*3 {
			return nil, fmt.Errorf("truncated rgb samples")
		}
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				src := (y*w + x) * 3
				dst := y*img.Stride + x*4
				img.Pix[dst] = samples[src]
				img.Pix[dst+1] = samples[src+1]
				img.Pix[dst+2] = samples[src+2]
				img.Pix[dst+3] = 0xff
			}
		}
		return img, nil

	default:
		return nil, fmt.Errorf("unsupported color space: %s", *colorSpace)
	}
}
