// Package dct implements the fixed-size orthogonal DCT-II transform used as
// the frequency-domain carrier for watermark bits.
//
// A Kernel is built once per block size and applied to whole batches of
// blocks: each side of the 2D transform is a matrix multiplication against
// the precomputed basis, which is what keeps per-image embedding cost flat
// when hundreds of blocks are processed.
package dct
