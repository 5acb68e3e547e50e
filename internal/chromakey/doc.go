// Package chromakey removes a synthetic, near-uniform background colour from a
// raster image and isolates the foreground subject as a transparent sprite.
//
// The pipeline for one image is:
//
//  1. Sampling: average small patches along all four edges and cluster the
//     results into a BackgroundSet (see DetectBackground).
//  2. Classification: a Classifier decides whether a colour is background,
//     using a Euclidean RGB tolerance plus a wider tolerance for green fringe.
//  3. Erosion: a breadth-first flood fill seeded from the image border turns
//     background pixels transparent. Pixels that fail the test become walls
//     the fill never crosses, so interior regions that share the key colour
//     survive. One ring of residual green fringe is cleaned afterwards.
//  4. Cropping: the result is trimmed to the bounding box of visible pixels.
//
// # Determinism
//
// Every step is a pure function of the input pixels and Options. Traversal
// order inside the flood fill does not change which pixels are removed.
//
// # Thread Safety
//
// No state is shared between calls. Process may run concurrently on different
// images; each call owns its Raster, BackgroundSet and erosion buffers.
//
// # Colour Depth
//
// Inputs of any colour model are reduced to 8 bits per channel before
// processing. Alpha in the input is ignored for classification.
package chromakey
