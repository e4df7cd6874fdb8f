// Package network couples independent memory instances into a loose
// collective: phase synchronization over Kuramoto oscillators, quorum
// consensus for admitting new concepts network-wide, distribution of
// multi-concept patterns across nodes, and agreement-weighted ensemble
// prediction.
//
// Every node's memory is exclusively owned by that node. Cross-node
// effects only happen through the operations here, which are structured as
// broadcast/gather over the node set; no code ever mutates a foreign
// node's graph directly.
package network
