// Package phash computes and compares 64-bit perceptual hashes of luma
// planes.
//
// The hash captures coarse visual structure: the plane is area-averaged to
// 32×32, transformed, and the lowest 8×8 frequency band is thresholded
// against its median. Visually similar images land within a small Hamming
// distance of each other, which makes the hash a cheap recall-favoring
// prefilter in front of fingerprint comparison, never a final decision.
package phash
