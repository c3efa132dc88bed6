// Package colfile implements the hourly columnar capture files and the
// writer goroutine that fills them.
//
// One file covers one UTC clock hour for one product. Each file is a
// 256-byte header followed by four dense, fixed-capacity column arrays
// (timestamp, price, quantity, side). The writer memory-maps the whole
// file at creation and appends rows in place; the header's row count is
// the durable lower bound on recoverable rows. External consumers open
// files read-only and must only trust indices below the header row count.
package colfile
