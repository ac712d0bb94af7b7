// Package atomicsync provides a wait-free exchange of a shared resource
// between exactly one writer goroutine and one reader goroutine.
//
// The writer fills one of three payload slots and publishes it; the reader
// pulls the most recently published slot when convenient. Neither side ever
// blocks, waits, or allocates on the exchange path, which makes the primitive
// suitable for handing data out of hard real-time callbacks.
//
// Ownership is transferred by exchanging slot indices through three shared
// atomic cells rather than by passing pointers. At any instant at most one
// slot is checked out to the writer and at most one to the reader, so a slot
// is never simultaneously written and read.
package atomicsync
