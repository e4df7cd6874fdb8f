// Package store provides the persistence boundary for memory snapshots and
// an embedded similarity index over concept vectors.
//
// The memory core treats persistence as opaque and never assumes
// durability between calls. FileStore persists one JSON snapshot per node;
// ChromemIndex mirrors concept vectors into an embedded chromem-go
// collection so nearest-concept queries do not scan the whole graph.
package store
