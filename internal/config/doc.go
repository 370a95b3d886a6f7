// Package config loads, validates, and normalizes AIGCGuard configuration.
//
// Configuration lives in a single TOML file. Every tunable of the watermark
// pipeline (quantization step, legacy step ladder, carrier coefficient,
// signal thresholds), the corpus cache TTLs, the matcher weights, and the
// video sampling intervals is owned here so engines stay free of mutable
// state and callers thread settings through explicitly.
package config
