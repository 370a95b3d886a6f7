// Package imaging decodes encoded pixel buffers into the luma plane the
// watermark pipeline operates on, and recomposes modified luma with the
// original chroma into a re-encoded buffer.
//
// Only the brightness channel is ever touched; chroma passes through
// unchanged, which keeps the embedding invisible and the re-encode cheap.
package imaging
