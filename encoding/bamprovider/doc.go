// Package bamprovider provides utilities for scanning a BAM file in
// parallel.
//
// Provider is an interface for reading a BAM file, optionally split into
// multiple shards for concurrent scanning.
package bamprovider
