// Package watermark orchestrates the embedding and detection pipeline:
// decode, fingerprint embed/extract over the luma plane, perceptual-hash
// prefilter, corpus lookup, and candidate ranking. It is the one package
// CLI commands talk to.
package watermark
