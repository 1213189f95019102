package config

import (
	"github.com/pevans/seminarfed/dialect"
	"github.com/rs/zerolog/log"
)

// DialectPolicy answers which dialects seminars may use, defaulting new
// seminars to the stored default_dialect.
type DialectPolicy struct {
	store    *ConfigStore
	registry *dialect.Registry
}

// NewDialectPolicy creates a policy backed by store and registry.
func NewDialectPolicy(store *ConfigStore, registry *dialect.Registry) *DialectPolicy {
	return &DialectPolicy{store: store, registry: registry}
}

// Has reports whether id names a registered dialect.
func (p *DialectPolicy) Has(id string) bool {
	return p.registry.Has(id)
}

// Default returns the configured default dialect, or the plain dialect when
// the setting can't be read or names an unknown dialect.
func (p *DialectPolicy) Default() string {
	cfg, err := p.store.GetConfig()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read default dialect")
		return dialect.PlainID
	}
	if !p.registry.Has(cfg.DefaultDialect) {
		return dialect.PlainID
	}
	return cfg.DefaultDialect
}
