package compress

import "testing"

func TestEstimateSize(t *testing.T) {
	tests := []struct {
		name string
		req  EstimateRequest
		want float64
	}{
		{
			"jpeg high quality",
			EstimateRequest{SizeBytes: 1_000_000, ContentType: "image/jpeg", Quality: 90},
			0.92,
		},
		{
			"jpeg mid quality",
			EstimateRequest{SizeBytes: 1_000_000, ContentType: "image/jpeg", Quality: 75},
			0.68,
		},
		{
			"png shrinks more",
			EstimateRequest{SizeBytes: 1_000_000, ContentType: "image/png", Quality: 75},
			0.68 * 0.45,
		},
		{
			"pdf structural floor",
			EstimateRequest{SizeBytes: 1_000_000, ContentType: "application/pdf", Quality: 75},
			0.68 * 0.85,
		},
		{
			"webp conversion discount",
			EstimateRequest{SizeBytes: 1_000_000, ContentType: "image/jpeg", Quality: 75, ForceFormat: FormatWebP},
			0.68 * 0.82,
		},
		{
			"grayscale discount",
			EstimateRequest{SizeBytes: 1_000_000, ContentType: "image/jpeg", Quality: 75, Grayscale: true},
			0.68 * 0.72,
		},
		{
			"zero quality falls back",
			EstimateRequest{SizeBytes: 1_000_000, ContentType: "image/jpeg"},
			0.55,
		},
		{
			"downsample scales by area",
			EstimateRequest{SizeBytes: 1_000_000, ContentType: "image/jpeg", Quality: 75, DPI: 150},
			0.68 * 0.25,
		},
		{
			"reference dpi keeps the pixels",
			EstimateRequest{SizeBytes: 1_000_000, ContentType: "image/jpeg", Quality: 75, DPI: 300},
			0.68,
		},
		{
			"dpi above reference never inflates",
			EstimateRequest{SizeBytes: 1_000_000, ContentType: "image/jpeg", Quality: 75, DPI: 600},
			0.68,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateSize(tt.req)

			if diff := got.Ratio - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Ratio = %v, want %v", got.Ratio, tt.want)
			}
			if got.InputBytes != tt.req.SizeBytes {
				t.Errorf("InputBytes = %d, want %d", got.InputBytes, tt.req.SizeBytes)
			}
			if want := int(float64(tt.req.SizeBytes) * tt.want); got.EstimatedBytes != want {
				t.Errorf("EstimatedBytes = %d, want %d", got.EstimatedBytes, want)
			}
		})
	}
}

func TestEstimateSizeFloor(t *testing.T) {
	// Even the steepest combination never predicts below the floor.
	got := EstimateSize(EstimateRequest{
		SizeBytes:   1_000_000,
		ContentType: "image/png",
		Quality:     5,
		Grayscale:   true,
	})
	if got.Ratio < 0.02 {
		t.Errorf("Ratio = %v, want clamped to 0.02", got.Ratio)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidOptions, 400},
		{ErrInvalidFile, 400},
		{ErrUnsupportedMedia, 415},
		{ErrFileTooLarge, 413},
	}

	for _, tt := range tests {
		if got := MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
