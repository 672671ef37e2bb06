// Package core implements the dataset cleaning workflow independent of any
// UI or transport layer.
//
// # Pipeline
//
// [Pipeline.Run] applies a [CleaningConfig] to a [table.Dataset] in a fixed
// order: drop rows with missing values, coerce one column to numeric, drop
// duplicate rows, replace text in text columns. Every outcome, including
// failures, is recorded in the returned [Report]; no step can stop the
// ones after it.
//
// # Sessions
//
// Each load creates a [Session] holding the original dataset and a working
// copy. The [Service] keeps sessions in a registry keyed by ID, serializes
// runs per session, and evicts idle sessions in the background.
//
// # Formats
//
// File formats register a decoder and an encoder at init time:
//
//	core.Register(core.FormatDefinition{
//	    Key:        "xlsx",
//	    Label:      "Excel (*.xlsx)",
//	    Extensions: []string{".xlsx"},
//	    Decode:     decodeWorkbook,
//	    Encode:     xlsx.Encode,
//	})
//
// The formats subpackage registers the built-in ones; import it for its
// side effects.
//
// # Errors
//
// Load and save failures are returned as [*FileError]. Anything shown to a
// user goes through [MapError], which attaches a support code.
package core
