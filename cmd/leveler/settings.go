package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-leveler/dsp/effectchain"
)

// settingsFlags are shared by commands that take a configuration.
type settingsFlags struct {
	Settings string            `type:"existingfile" help:"JSON file with a flat settings record."`
	Set      map[string]string `short:"s" placeholder:"KEY=VALUE" help:"Override one setting. Repeatable."`
}

// patch merges the settings file with the --set overrides.
func (f *settingsFlags) patch() (map[string]any, error) {
	patch := make(map[string]any)

	if f.Settings != "" {
		file, err := os.Open(f.Settings)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		dec := json.NewDecoder(file)
		dec.UseNumber()

		var record map[string]any
		if err := dec.Decode(&record); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.Settings, err)
		}

		maps.Copy(patch, record)
	}

	for k, v := range f.Set {
		patch[k] = parseValue(v)
	}

	return patch, nil
}

// settings applies the patch to base and logs every ignored field.
func (f *settingsFlags) settings(base effectchain.Settings, log *logrus.Logger) (effectchain.Settings, error) {
	patch, err := f.patch()
	if err != nil {
		return base, err
	}

	s, res := effectchain.ApplyPatch(base, patch)
	for _, ig := range res.Ignored {
		log.WithFields(logrus.Fields{
			"key":    ig.Key,
			"reason": ig.Reason,
		}).Warn("Ignored setting")
	}

	return s, nil
}

// parseValue reads a command-line value as a bool, a number or a name.
func parseValue(v string) any {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}

	if x, err := strconv.ParseFloat(v, 64); err == nil {
		return x
	}

	return v
}
