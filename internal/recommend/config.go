// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package recommend

import "fmt"

// Config contains the tuning parameters for recommendation orchestration.
type Config struct {
	// DefaultK is the result size when the request omits k.
	// Default: 5.
	DefaultK int `json:"default_k"`

	// MaxK caps the requested result size. Larger requests are clamped,
	// not rejected.
	// Default: 100.
	MaxK int `json:"max_k"`

	// PPRExtra is how many candidates beyond k the PPR capability is
	// asked for, as headroom for seen-item filtering.
	// Default: 10.
	PPRExtra int `json:"ppr_extra"`

	// PPRWalks is the random-walk budget per PPR request.
	// Default: 10000.
	PPRWalks int `json:"ppr_walks"`

	// PPRHops is the hop limit per PPR walk.
	// Default: 2.
	PPRHops int `json:"ppr_hops"`

	// PopularityMargin widens the popularity-tier fetch beyond
	// needed + |seen| to absorb overlap with earlier tiers.
	// Default: 5.
	PopularityMargin int `json:"popularity_margin"`

	// CatalogMargin widens the catalog-tier fetch the same way.
	// Default: 10.
	CatalogMargin int `json:"catalog_margin"`
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultK:         5,
		MaxK:             100,
		PPRExtra:         10,
		PPRWalks:         10000,
		PPRHops:          2,
		PopularityMargin: 5,
		CatalogMargin:    10,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DefaultK < 1 {
		return fmt.Errorf("default_k must be positive, got %d", c.DefaultK)
	}
	if c.MaxK < c.DefaultK {
		return fmt.Errorf("max_k must be >= default_k, got %d < %d", c.MaxK, c.DefaultK)
	}
	if c.PPRExtra < 0 {
		return fmt.Errorf("ppr_extra must be non-negative, got %d", c.PPRExtra)
	}
	if c.PPRWalks < 1 {
		return fmt.Errorf("ppr_walks must be positive, got %d", c.PPRWalks)
	}
	if c.PPRHops < 1 {
		return fmt.Errorf("ppr_hops must be positive, got %d", c.PPRHops)
	}
	if c.PopularityMargin < 0 {
		return fmt.Errorf("popularity_margin must be non-negative, got %d", c.PopularityMargin)
	}
	if c.CatalogMargin < 0 {
		return fmt.Errorf("catalog_margin must be non-negative, got %d", c.CatalogMargin)
	}
	return nil
}

// ClampK maps a raw requested k onto the valid range. Zero and negative
// values take the default; oversized values are clamped to MaxK.
func (c *Config) ClampK(k int) int {
	if k <= 0 {
		return c.DefaultK
	}
	if k > c.MaxK {
		return c.MaxK
	}
	return k
}
