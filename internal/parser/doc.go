// Package parser extracts level2 update rows from Coinbase l2_data frames.
//
// This is not a JSON parser. The exchange emits a stable, flat message
// shape with fixed key spellings and field order, so each row is recovered
// with byte scans and fixed key-length offsets instead of a general JSON
// engine. Frames that do not start with the l2_data prefix are ignored.
package parser
