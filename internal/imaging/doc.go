// Package imaging provides the pixel-level primitives the science pipeline
// is built on: decoding and normalizing images to a fixed channel order,
// grayscale and perceptual color-space conversion, Canny edge extraction,
// rectangular partitioning (grids, sliding patches, named bands), and JPEG
// encoding for external engines.
//
// # Coordinate System
//
// All pixel coordinates are 0-based: X increases rightward, Y downward.
// Rectangular regions are half-open: (X0,Y0) inclusive, (X1,Y1) exclusive.
//
// # Pixel Buffers
//
// Decoded images are normalized to *image.NRGBA so every consumer sees the
// same non-premultiplied RGBA byte order regardless of the source format.
// Derived planes (grayscale, Lab, HSV, edge masks) are row-major slices
// indexed [y][x].
//
// # Thread Safety
//
// FileSource is safe for concurrent use. The conversion and partitioning
// functions are stateless and may be called concurrently on different
// buffers.
package imaging
