// Package compute provides the pair-summation kernels and the executors that
// run them.
//
// A [Backend] is passed explicitly to every kernel; there is no global pool:
//
//   - [CPUBackend]: goroutine fan-out with one private partial sum per worker
//   - [SerialBackend]: single goroutine, for tests and nested callers
//
// # Kernels
//
//	e := compute.Intra(backend, box, sys, lj.Energy)
//	e += compute.Inter(backend, box, molA, molB, lj.Energy)
//	site := compute.SingleSite(backend, box, p, sys, i, lj.Energy)
//
// Reductions are mathematically order independent. Results from backends with
// different worker counts may differ in the last bits due to floating-point
// summation order.
package compute
