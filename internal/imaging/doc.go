// Package imaging provides image I/O and inspection for the sprite tools.
//
// It covers decoding (PNG, JPEG, GIF, BMP, WebP), PNG encoding, image
// metadata, pixel colour sampling, animation frame discovery and loading, and
// sprite sheet composition. Background removal itself lives in
// internal/chromakey; this package only moves pixels in and out.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left. Rectangles
// are half-open: Min is inclusive, Max is exclusive.
//
// # Frame Order
//
// Frames are always ordered lexicographically by file name. ListFrames,
// LoadFrames and ComposeSheet preserve that order, so a directory of
// zero-padded frame files becomes a sheet in animation order.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are
// stateless and may be called concurrently on different images.
package imaging
