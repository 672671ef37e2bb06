// Package formats registers the load/save file formats with the core
// registry. Import it for side effects.
package formats
