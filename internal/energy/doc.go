// Package energy decomposes the pairwise energy of a partitioned system.
//
// A system is split into components, contiguous index ranges given by
// Partition.Counts, each marked frozen or free. The queries are
//
//   - Frozen: pairs with both particles in frozen components
//   - Interacting: pairs with at least one free particle, optionally against
//     a fixed surface
//   - SingleSite: one particle against everything else
//   - Total: every pair
//
// For Scalar and Composite potentials Frozen + Interacting equals Total, and
// the sum of all single-site energies is twice Total, up to floating-point
// summation order.
//
// External potentials have no per-pair form. Frozen is 0, SingleSite returns
// the whole-system energy, and Interacting and Total call the calculator once.
// Decompose and Verify reject them with ErrNotDecomposable.
//
// The LJ cutoff is not applied; every pair contributes.
//
// Inputs are validated before any arithmetic. Length or dimension
// disagreements are reported as *MismatchError, which matches
// ErrConfigMismatch.
package energy
