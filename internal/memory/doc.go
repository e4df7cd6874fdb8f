// Package memory implements the single-node associative memory engine:
// concepts that activate, decay, and fire; Hebbian strengthening of the
// associations between co-firing concepts; predictive coding over the
// association graph; vector-symbolic composition of new concepts;
// self-reference scoring; and offline dream consolidation.
//
// All state is owned by an Instance and guarded by a single mutex: Hebbian
// updates read-then-write several concepts and must be atomic with respect
// to each other. Cross-node coordination lives in the network package and
// only ever reaches an Instance through its exported methods.
//
// Time is read through an injectable Clock and all randomness flows through
// a seedable generator, so every behavior in this package is reproducible
// under test.
package memory
