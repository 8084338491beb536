// Package bailout implements the three-layer limit registry the VM
// consults to decide when a match has run long enough to abort: a
// global default, overridable per pattern, overridable again per match.
package bailout

import (
	"time"

	"github.com/coregx/riftregex/common"
)

// Scope identifies which layer a Config was registered at.
type Scope uint8

const (
	ScopeGlobal Scope = iota
	ScopePattern
	ScopeMatch
)

// Config bounds a single execution. Override gates whether this Config's
// set fields participate at all: when false, the layer is ignored
// entirely and the next layer down is inherited wholesale. When true,
// each non-nil field replaces the inherited value for that field only;
// nil fields keep inheriting. A registered Config's zero value for
// Override is therefore inert by default, matching the registry's "only
// overriding configs replace fields" rule.
type Config struct {
	Override       bool
	MaxDepth       *int
	MaxDuration    *time.Duration
	MaxTransitions *int64
}

// Effective is a fully-resolved Config with every field set, returned by
// Registry.GetEffective. Unlike Config its fields are plain values: it
// is the caller-owned, freshly-computed result of layering, not a
// registered input.
type Effective struct {
	MaxDepth       int
	MaxDuration    time.Duration
	MaxTransitions int64
}

// DefaultConfig returns the engine's built-in global defaults: generous
// enough not to interfere with ordinary patterns, tight enough to bound
// pathological ones.
func DefaultConfig() Config {
	depth := 10_000
	dur := 2 * time.Second
	transitions := int64(100_000_000)
	return Config{Override: true, MaxDepth: &depth, MaxDuration: &dur, MaxTransitions: &transitions}
}

// Validate checks any fields this Config sets are in sane ranges.
func (c Config) Validate() error {
	if c.MaxDepth != nil && *c.MaxDepth < 0 {
		return common.NewError(common.InvalidParameter, 0, "MaxDepth must be >= 0")
	}
	if c.MaxDuration != nil && *c.MaxDuration < 0 {
		return common.NewError(common.InvalidParameter, 0, "MaxDuration must be >= 0")
	}
	if c.MaxTransitions != nil && *c.MaxTransitions < 0 {
		return common.NewError(common.InvalidParameter, 0, "MaxTransitions must be >= 0")
	}
	return nil
}

// overlay applies c's set fields onto base, when c.Override is set.
func overlay(base Effective, c Config) Effective {
	if !c.Override {
		return base
	}
	if c.MaxDepth != nil {
		base.MaxDepth = *c.MaxDepth
	}
	if c.MaxDuration != nil {
		base.MaxDuration = *c.MaxDuration
	}
	if c.MaxTransitions != nil {
		base.MaxTransitions = *c.MaxTransitions
	}
	return base
}
