package core

import "strings"

// CleaningConfig selects which cleaning steps run. Steps always execute in
// the fixed order drop-missing, coerce-numeric, drop-duplicates,
// find-and-replace; the order cannot be configured.
type CleaningConfig struct {
	DropMissing    bool            `json:"drop_missing"`
	CoerceNumeric  CoerceStep      `json:"coerce_numeric"`
	DropDuplicates bool            `json:"drop_duplicates"`
	FindReplace    FindReplaceStep `json:"find_replace"`
}

// CoerceStep converts one column to numeric. A blank Column with Enabled
// set produces a configuration warning.
type CoerceStep struct {
	Enabled bool   `json:"enabled"`
	Column  string `json:"column"`
}

// FindReplaceStep replaces literal text in every text column. Find and
// Replace are both required when Enabled is set.
type FindReplaceStep struct {
	Enabled bool   `json:"enabled"`
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// AnyEnabled reports whether at least one step is switched on.
func (c CleaningConfig) AnyEnabled() bool {
	return c.DropMissing || c.CoerceNumeric.Enabled || c.DropDuplicates || c.FindReplace.Enabled
}

// Normalize trims the coerce column name. Find and replace text are kept
// verbatim since whitespace can be meaningful there.
func (c CleaningConfig) Normalize() CleaningConfig {
	c.CoerceNumeric.Column = strings.TrimSpace(c.CoerceNumeric.Column)
	return c
}
