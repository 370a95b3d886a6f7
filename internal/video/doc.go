// Package video embeds and detects watermarks in YUV4MPEG2 streams.
// Frames are sampled at configured intervals: embedding marks roughly one
// frame per second, detection scans twice per second and stops at the
// first frame carrying a usable mark.
package video
