// Package ir defines the typed SSA intermediate representation of the
// Maxwell recompiler.
//
// The IR is produced by the translate package from decoded Maxwell
// instructions, rewritten by the passes in the opt package, and consumed by
// the glsl and glasm backends. Instructions and blocks are allocated from
// per-Program pools and referenced by pointer; reference cycles (phi back
// edges) are intentional and released en masse with the pools.
package ir
