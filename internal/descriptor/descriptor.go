package descriptor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/vk/gridcap/internal/scenario"
)

// Loader turns one descriptor file into a scenario configuration.
type Loader interface {
	Load(ctx context.Context, path string) (*scenario.Config, error)
}

// Load reads a scenario descriptor, dispatching on the file extension.
// The returned config has already passed scenario.Config.Validate.
func Load(ctx context.Context, path string) (*scenario.Config, error) {
	var loader Loader
	switch ext := filepath.Ext(path); ext {
	case ".hcl":
		loader = NewHCLLoader()
	case ".yaml", ".yml":
		loader = NewYAMLLoader()
	default:
		return nil, &scenario.ConfigurationError{
			Key:    path,
			Reason: fmt.Sprintf("unsupported descriptor format %q", ext),
		}
	}

	cfg, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// dateLayouts are the accepted forms for snapshot and cutout timestamps.
var dateLayouts = []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339}

// parseDate parses a descriptor timestamp, always in UTC.
func parseDate(key, value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &scenario.ConfigurationError{
		Key:    key,
		Reason: fmt.Sprintf("cannot parse timestamp %q", value),
	}
}
