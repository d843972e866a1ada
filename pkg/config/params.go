package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeParams decodes device params into out, a pointer to the class's
// typed configuration. Strings convert to durations and numbers convert
// between widths; unknown keys are an error.
func DecodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(params); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	return nil
}
