// Package vsa implements the vector-symbolic operations used to compose
// concepts: circular-convolution binding, superposition merging, and
// analogy arithmetic over fixed-dimension semantic vectors.
//
// Binding produces a vector dissimilar to both inputs (role-filler
// binding); merging produces a blend similar to all inputs; analogy
// computes D = C + (B - A) for linear analogy completion.
package vsa
