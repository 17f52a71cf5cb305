package config

import (
	"fmt"

	"github.com/local/pdfsheet/internal/colorfilter"
)

// Thresholds resolves the preset and applies any per-threshold override.
func (f FilterConfig) Thresholds() (colorfilter.Thresholds, error) {
	t, err := colorfilter.Preset(f.Preset)
	if err != nil {
		return t, err
	}
	for _, o := range []struct {
		name string
		v    int
		dst  *uint8
	}{
		{"MONO_SATURATION_THRESHOLD", f.SaturationThreshold, &t.Saturation},
		{"MONO_LIGHT_TEXT_THRESHOLD", f.LightTextThreshold, &t.LightText},
		{"MONO_NEAR_WHITE_THRESHOLD", f.NearWhiteThreshold, &t.NearWhite},
	} {
		if o.v < 0 {
			continue
		}
		if o.v > 255 {
			return t, fmt.Errorf("%s must be within 0-255, got %d", o.name, o.v)
		}
		*o.dst = uint8(o.v)
	}
	return t, nil
}
