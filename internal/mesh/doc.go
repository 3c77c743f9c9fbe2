// Package mesh provides the spatial indexing structures: a uniform
// cell-linked list sized to the interaction cutoff radius, and a
// multilevel stack of refined lists for adaptive-resolution bodies.
//
// Grids index real particles only and are rebuilt from scratch every
// step; the cell array itself is allocated once per body and reused.
// Cell insertion is the one contended write of the step pipeline and
// is serialized per cell, so parallel workers may insert freely.
package mesh
