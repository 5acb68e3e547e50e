// Package batch runs background removal over single files and whole frame
// directories.
//
// ProcessFile handles one image. ProcessDirectory fans the frames of a
// directory out over a fixed pool of workers; every job decodes, keys, crops
// and writes its own image, so jobs share no mutable state and one bad frame
// never affects another. Results are collected into a Summary sorted by file
// name, independent of completion order.
package batch
