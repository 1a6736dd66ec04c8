// Package memo provides a read-through disk cache for expensive computations.
//
// A Cache stores one file per key in a directory. The first lookup of a key
// runs the compute function and writes its result; later lookups decode the
// file and never call compute again. Entries are never invalidated
// automatically: deleting the file is the only way to force recomputation.
//
// The cache assumes a single process owns the directory. Concurrent runs
// against the same directory may both compute and the last writer wins.
package memo
