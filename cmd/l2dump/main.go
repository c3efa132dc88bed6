// l2dump prints the header and leading rows of one hourly capture file.
// Usage: go run ./cmd/l2dump -n 20 /path/to/20240601/1200.bin
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rickgao/l2-recorder/internal/colfile"
	"github.com/rickgao/l2-recorder/internal/model"
)

func main() {
	n := flag.Uint64("n", 10, "number of rows to print")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: l2dump [-n rows] <file.bin>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	r, err := colfile.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "l2dump: %v\n", err)
		os.Exit(1)
	}
	defer r.Close()

	hdr := r.Header()
	hour := time.Unix(int64(hdr.HourEpochStart), 0).UTC()

	fmt.Printf("file:     %s\n", path)
	fmt.Printf("product:  %s\n", hdr.Product)
	fmt.Printf("hour:     %s (%d)\n", hour.Format(time.RFC3339), hdr.HourEpochStart)
	fmt.Printf("rows:     %d / %d\n", hdr.Rows, hdr.Capacity)
	for c := 0; c < colfile.ColCount; c++ {
		fmt.Printf("col[%d]:   off=%d sz=%d\n", c, hdr.ColOff[c], hdr.ColSz[c])
	}

	rows, err := r.ReadRows(0, *n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "l2dump: %v\n", err)
		os.Exit(1)
	}

	for i, row := range rows {
		side := "ask"
		if row.Side == model.SideBid {
			side = "bid"
		}
		ts := time.Unix(0, int64(row.TsNs)).UTC()
		fmt.Printf("%6d  %s  %s  px=%d.%02d  qty=%g\n",
			i, ts.Format("15:04:05.000000000"), side,
			row.Price/model.PriceScale, row.Price%model.PriceScale, row.Qty)
	}
}
