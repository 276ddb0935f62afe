// Package metadata loads the table that describes every microscopy image in a
// collection: which imaging method, location, sample and optical mode produced
// it, and which file holds it. The table is read once and is read-only
// afterwards.
package metadata
