package cutout

import (
	"context"

	"github.com/vk/gridcap/internal/ctxlog"
	"github.com/vk/gridcap/internal/scenario"
)

// Provider builds one cutout from its descriptor spec.
type Provider interface {
	Build(name string, spec scenario.CutoutSpec) (*Cutout, error)
}

// Store holds every cutout of a run. It is populated once by Load and
// read-only afterwards, so scenario instances may query it concurrently.
type Store struct {
	cutouts map[string]*Cutout
}

// NewStore builds all cutouts named in the config. When dataDir holds
// gridded files for a cutout they take precedence; otherwise the synthetic
// provider fills in deterministic fields.
func NewStore(ctx context.Context, cfg *scenario.Config, dataDir string) (*Store, error) {
	logger := ctxlog.FromContext(ctx)
	csvProvider := CSVProvider{DataDir: dataDir}

	store := &Store{cutouts: make(map[string]*Cutout, len(cfg.Cutouts))}
	for name, spec := range cfg.Cutouts {
		var provider Provider = SyntheticProvider{}
		source := "synthetic"
		if dataDir != "" && csvProvider.Available(name) {
			provider = csvProvider
			source = "csv"
		}

		cut, err := provider.Build(name, spec)
		if err != nil {
			return nil, err
		}
		logger.Debug("Cutout built.",
			"cutout", name, "module", spec.Module, "source", source,
			"sites", len(cut.Sites), "snapshots", len(cut.Times))
		store.cutouts[name] = cut
	}
	return store, nil
}

// Get returns a cutout by name.
func (s *Store) Get(name string) (*Cutout, bool) {
	cut, ok := s.cutouts[name]
	return cut, ok
}

// Len returns the number of cutouts held.
func (s *Store) Len() int {
	return len(s.cutouts)
}
