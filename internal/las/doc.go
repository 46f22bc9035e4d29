// Package las decodes ASPRS LAS point-cloud files into flat position and
// colour buffers suitable for handing to a renderer.
//
// The package covers the uncompressed tabular format only: a fixed-layout
// public header followed by an array of fixed-length point records. Header
// parsing is strict (bad signature or version fails the load); record
// decoding is deliberately tolerant, stopping at the buffer boundary so a
// truncated file degrades to a partial point set instead of an error.
package las
