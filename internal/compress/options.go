// Package compress implements the document weight-reduction pipeline:
// re-encoding images and rewriting embedded PDF images at a requested
// quality, optionally chasing a target output size.
package compress

import (
	"fmt"
	"net/url"
	"strconv"
)

// Format selects the output encoding for image inputs.
type Format string

// Output formats. FormatOriginal re-encodes in the input's own format.
const (
	FormatOriginal Format = "original"
	FormatJPG      Format = "jpg"
	FormatWebP     Format = "webp"
)

// Validate checks if the format is a valid output format.
func (f Format) Validate() error {
	switch f {
	case FormatOriginal, FormatJPG, FormatWebP:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be original, jpg, or webp)", f)
	}
}

// Quality and DPI bounds accepted from clients.
const (
	MinQuality = 1
	MaxQuality = 100
	MinDPI     = 72
	MaxDPI     = 600

	// referenceDPI is the resolution at which inputs are assumed to be
	// prepared; a lower requested DPI downscales proportionally.
	referenceDPI = 300
)

// Target-weight retry policy: each attempt drops quality by a fixed
// step until the floor, then the smallest result wins as best effort.
const (
	qualityStep    = 15
	qualityFloor   = 10
	maxAttempts    = 5
	bytesPerKBUnit = 1024
)

// Options holds one compression request's parameters.
type Options struct {
	Quality        int
	DPI            int
	Grayscale      bool
	RemoveMetadata bool
	ForceFormat    Format
	TargetWeightKB int
}

// Validate checks option bounds and applies defaults for absent values.
func (o *Options) Validate(defaultQuality int) error {
	if o.Quality == 0 {
		o.Quality = defaultQuality
	}
	if o.Quality < MinQuality || o.Quality > MaxQuality {
		return fmt.Errorf("%w: quality must be between %d and %d", ErrInvalidOptions, MinQuality, MaxQuality)
	}

	if o.DPI == 0 {
		o.DPI = referenceDPI
	}
	if o.DPI < MinDPI || o.DPI > MaxDPI {
		return fmt.Errorf("%w: dpi must be between %d and %d", ErrInvalidOptions, MinDPI, MaxDPI)
	}

	if o.ForceFormat == "" {
		o.ForceFormat = FormatOriginal
	}
	if err := o.ForceFormat.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	if o.TargetWeightKB < 0 {
		return fmt.Errorf("%w: targetWeight must be positive", ErrInvalidOptions)
	}

	return nil
}

// TargetBytes returns the requested output budget, or 0 when unset.
func (o Options) TargetBytes() int {
	return o.TargetWeightKB * bytesPerKBUnit
}

// OptionsFromForm parses request options from multipart form values.
func OptionsFromForm(form url.Values) (Options, error) {
	var opts Options

	var err error
	if opts.Quality, err = formInt(form, "quality"); err != nil {
		return opts, err
	}
	if opts.DPI, err = formInt(form, "dpi"); err != nil {
		return opts, err
	}
	if opts.TargetWeightKB, err = formInt(form, "targetWeight"); err != nil {
		return opts, err
	}

	opts.Grayscale = formBool(form, "grayscale")
	opts.RemoveMetadata = formBool(form, "removeMetadata")
	opts.ForceFormat = Format(form.Get("forceFormat"))

	return opts, nil
}

func formInt(form url.Values, key string) (int, error) {
	raw := form.Get(key)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidOptions, key)
	}
	return v, nil
}

func formBool(form url.Values, key string) bool {
	v, _ := strconv.ParseBool(form.Get(key))
	return v
}
