// Package repository turns raw store rows into museum and painting records.
//
// Each loader queries the store, runs the infobox extractor on every row and
// keeps only records that satisfy the acceptance rules of their type. Both
// loaders are memoized on disk, so the store is queried at most once per
// cache directory.
package repository
