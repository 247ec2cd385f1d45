// Package config is documented in config.go.
//
// BEDPath restricts evaluation to variants falling inside the given BED
// file's interval union; see variant.FilterByBED.
//
// ChainMode, Window, ISC, NoDup, Splice, DP, and the DP scoring parameters
// (Match, Mismatch, GapOpen, GapExtend) are accepted, without validation, for
// command-line compatibility with the wider variant-calling toolchain this
// binary is part of, but no evaluation step reads them: the Bayesian
// evaluator's documented procedure never references local realignment or
// indel-chaining behavior, so wiring them up would be inventing semantics
// the procedure doesn't call for.
package config
