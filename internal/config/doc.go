// Package config provides configuration structures and utilities for
// museumstyle. It defines where entities are read from, where caches and
// results live, how images are fetched and how the stylizer is run.
package config
