package core

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/CleanCSV/internal/table"
)

// DecodeOptions are per-load settings passed to a format's decoder.
type DecodeOptions struct {
	// Encoding names the character set of text formats ("" means utf-8).
	Encoding string

	// Sheet selects a worksheet for spreadsheet formats ("" means first).
	Sheet string
}

// DecodeFunc reads a whole file into a dataset.
type DecodeFunc func(r io.Reader, opts DecodeOptions) (*table.Dataset, error)

// EncodeFunc writes a dataset with a header row and no index column.
type EncodeFunc func(w io.Writer, ds *table.Dataset) error

// FormatDefinition describes one load/save file format.
type FormatDefinition struct {
	Key         string // "csv", "xlsx"
	Label       string // "CSV (*.csv)"
	Extensions  []string
	ContentType string
	Decode      DecodeFunc
	Encode      EncodeFunc
}

var (
	registry   = make(map[string]FormatDefinition)
	registryMu sync.RWMutex
)

// Register adds a format to the registry.
// Panics if a format with the same key is already registered.
func Register(def FormatDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("format already registered: %s", def.Key))
	}
	if def.Decode == nil || def.Encode == nil {
		panic(fmt.Sprintf("format %s: decoder and encoder are required", def.Key))
	}

	registry[def.Key] = def
}

// Get returns a format by key.
func Get(key string) (FormatDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[strings.ToLower(key)]
	return def, ok
}

// ForFile returns the format whose extension matches the file name.
func ForFile(name string) (FormatDefinition, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return FormatDefinition{}, false
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, def := range registry {
		for _, e := range def.Extensions {
			if e == ext {
				return def, true
			}
		}
	}
	return FormatDefinition{}, false
}

// All returns every registered format sorted by key.
func All() []FormatDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]FormatDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// FormatCount returns the number of registered formats.
func FormatCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered formats.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]FormatDefinition)
}

// resolveFormat picks the format by explicit key, falling back to the
// file extension.
func resolveFormat(key, fileName string) (FormatDefinition, error) {
	if key != "" {
		if def, ok := Get(key); ok {
			return def, nil
		}
		return FormatDefinition{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, key)
	}
	if def, ok := ForFile(fileName); ok {
		return def, nil
	}
	return FormatDefinition{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(fileName))
}
