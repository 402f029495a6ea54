// Package metrics implements the deterministic numeric analyzers: color
// statistics in perceptual space, entropy and co-occurrence complexity,
// multi-scale texture, box-counting fractal dimension, global and regional
// spatial frequency, bilateral symmetry, chromatic naturalness, and the
// derived perceptual-fluency score.
//
// Every analyzer here is a pure function of the frame's pixel data:
// identical pixels produce identical attributes on every run. Randomized
// steps (the color-volume pixel subsample) use a fixed seed. All outputs
// are bounded scalars in [0,1] written through the frame's sanitizing
// attribute store.
package metrics
