package compress

import "strings"

// Estimate predicts an output size before any upload happens. The
// multipliers are empirically tuned for typical phone camera photos and
// scanned documents; the prediction is cosmetic and never reconciled
// with the real output.
type Estimate struct {
	InputBytes     int     `json:"input_bytes"`
	EstimatedBytes int     `json:"estimated_bytes"`
	Ratio          float64 `json:"ratio"`
}

// EstimateRequest carries the parameters for a size prediction.
type EstimateRequest struct {
	SizeBytes   int    `json:"size_bytes"`
	ContentType string `json:"content_type"`
	Quality     int    `json:"quality"`
	DPI         int    `json:"dpi"`
	Grayscale   bool   `json:"grayscale"`
	ForceFormat Format `json:"force_format"`
}

// EstimateSize predicts the compressed size for the given parameters.
func EstimateSize(req EstimateRequest) Estimate {
	ratio := qualityRatio(req.Quality) * mediaRatio(req.ContentType) * conversionRatio(req.ForceFormat) * dpiRatio(req.DPI)

	if req.Grayscale {
		ratio *= 0.72
	}

	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0.02 {
		ratio = 0.02
	}

	return Estimate{
		InputBytes:     req.SizeBytes,
		EstimatedBytes: int(float64(req.SizeBytes) * ratio),
		Ratio:          ratio,
	}
}

// qualityRatio interpolates the observed size curve of JPEG quality
// settings: near-linear above 60, steeper below.
func qualityRatio(quality int) float64 {
	switch {
	case quality <= 0 || quality > 100:
		return 0.55
	case quality >= 90:
		return 0.92
	case quality >= 75:
		return 0.68
	case quality >= 60:
		return 0.48
	case quality >= 40:
		return 0.33
	case quality >= 25:
		return 0.22
	default:
		return 0.14
	}
}

func mediaRatio(contentType string) float64 {
	switch {
	case contentType == "application/pdf":
		// Only embedded images shrink; structure and fonts do not.
		return 0.85
	case strings.HasPrefix(contentType, "image/png"):
		// Lossless sources give up the most weight.
		return 0.45
	case strings.HasPrefix(contentType, "image/webp"):
		return 0.95
	default:
		return 1.0
	}
}

// dpiRatio scales the prediction by the pixel area a downsample keeps.
// A zero DPI means no resampling was requested.
func dpiRatio(dpi int) float64 {
	if dpi <= 0 || dpi >= referenceDPI {
		return 1.0
	}
	r := float64(dpi) / float64(referenceDPI)
	return r * r
}

func conversionRatio(format Format) float64 {
	if format == FormatWebP {
		return 0.82
	}
	return 1.0
}
