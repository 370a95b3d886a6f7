// Package blocks partitions a pixel plane into fixed-size non-overlapping
// blocks and copies block data to and from contiguous batches.
//
// Position enumeration is a pure function of plane dimensions and block
// size. Embedding and extraction both derive their block order from
// Positions, which is the invariant that makes bit k written during
// embedding the same bit k read during extraction.
package blocks
