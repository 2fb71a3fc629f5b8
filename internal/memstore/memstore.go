// Package memstore provides in-memory implementations of the repository
// interfaces. Used for local runs and tests; production wires the postgres
// implementations instead. All stores are safe for concurrent use.
package memstore
