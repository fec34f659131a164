// Package labels registers the header label sets with the core registry.
// Import this package to ensure all label sets are registered.
package labels

// This file exists to provide a single import point.
// Each label set file uses init() to register its set.
