// Package evaluate runs direction-of-arrival estimators over every
// (transmitter, receiver array) pair of a dataset and scores them against
// the geometric ground truth.
//
// For each pair with a complete array record and each configured
// algorithm, the harness assembles the array spectrogram, locates the
// source, extracts the estimated bearing and computes the circular error
// against the bearing from the array center to the transmitter. Pairs with
// incomplete records are skipped and reported; they never stop a run.
//
// Runs are sequential by default. With Workers > 1 pairs are distributed
// over a worker pool; each worker owns its assembler and estimator
// instances, and per-worker partial results are merged in pair-key order so
// the report does not depend on scheduling.
package evaluate
