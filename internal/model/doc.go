// Package model defines the shared data types that flow from the feed
// through the handoff queue into the columnar writer.
//
// Conventions:
//   - Prices: integer hundredths (price * 100), stored as uint32
//   - Timestamps: uint64 nanoseconds since Unix epoch, exchange event time
//   - Sides: 0 = bid, 1 = ask
package model
