// Package fingerprint embeds and extracts 256-bit digital fingerprints in
// luma planes using quantization-index modulation on a fixed mid-frequency
// transform coefficient.
//
// The engine is stateless: the quantization step is an explicit parameter on
// every call, so one engine instance can serve concurrent embed and extract
// requests and the adaptive recovery ladder never mutates shared state.
package fingerprint
