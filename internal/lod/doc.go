// Package lod bounds the displayed point count of a decoded cloud by
// camera distance.
//
// A Ladder maps distance ranges to point budgets. The Resampler owns the
// full decoded buffers and, on each per-frame distance sample, decimates
// them to the selected tier's budget by strided copy. Resampling cost is
// paid only on tier transitions, never per frame, and large copies are
// chunked with a yield hook so a transition cannot stall the host's render
// cadence.
package lod
