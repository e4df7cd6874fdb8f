// Package encoder provides the text-to-vector boundary for seeding concept
// semantic vectors.
//
// The memory core never generates embeddings itself: it asks an Encoder for
// a vector when a concept is created without one. Two encoders are
// provided: a deterministic hash encoder (default, dependency-free, safe
// for tests) and a FastEmbed ONNX encoder for real semantic embeddings.
// Non-finite vector components are rejected here so they never reach the
// memory graph.
package encoder
