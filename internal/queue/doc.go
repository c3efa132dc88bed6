// Package queue implements the lock-free single-producer single-consumer
// ring that hands rows from the feed goroutine to the writer goroutine.
//
// Exactly one goroutine may call Enqueue and exactly one may call Dequeue.
// The producer never blocks: Enqueue reports failure when the ring is full
// and the caller drops the row.
package queue
