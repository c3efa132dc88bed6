// Package feed implements the Coinbase WebSocket feed driver.
//
// The driver owns one connection to the level2 channel for one product.
// Its read goroutine is pinned to a CPU, parses every complete text frame
// in place, and hands rows to the columnar writer's queue without ever
// blocking on disk I/O. A closed or failed connection ends the read loop;
// there is no automatic reconnect, the owner decides what happens next.
package feed
