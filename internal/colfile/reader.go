package colfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rickgao/l2-recorder/internal/model"
)

// ReadHeader reads and validates the header of an hourly file. It is safe
// to call while a writer still owns the file; the rows field is the
// durable lower bound published by the writer's last sync.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()

	var buf [HeaderSize]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		return Header{}, fmt.Errorf("read header of %s: %w", path, err)
	}
	return parseHeader(buf[:])
}

// Reader provides read-only row access to one hourly file.
type Reader struct {
	f   *os.File
	hdr Header
}

// Open opens an hourly file read-only.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var buf [HeaderSize]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	hdr, err := parseHeader(buf[:])
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{f: f, hdr: hdr}, nil
}

// Header returns the file's header as read at Open.
func (r *Reader) Header() Header {
	return r.hdr
}

// ReadRows returns up to n rows starting at row index start. Only indices
// below the header row count are served.
func (r *Reader) ReadRows(start, n uint64) ([]model.L2Row, error) {
	if start >= r.hdr.Rows {
		return nil, nil
	}
	if start+n > r.hdr.Rows {
		n = r.hdr.Rows - start
	}

	ts := make([]byte, n*8)
	px := make([]byte, n*4)
	qty := make([]byte, n*4)
	side := make([]byte, n)

	cols := []struct {
		col int
		buf []byte
		w   uint64
	}{
		{ColTS, ts, 8},
		{ColPX, px, 4},
		{ColQty, qty, 4},
		{ColSide, side, 1},
	}
	for _, c := range cols {
		off := int64(r.hdr.ColOff[c.col] + start*c.w)
		if _, err := r.f.ReadAt(c.buf, off); err != nil {
			return nil, fmt.Errorf("read column %d: %w", c.col, err)
		}
	}

	rows := make([]model.L2Row, n)
	for i := uint64(0); i < n; i++ {
		rows[i] = model.L2Row{
			TsNs:  binary.LittleEndian.Uint64(ts[i*8:]),
			Price: binary.LittleEndian.Uint32(px[i*4:]),
			Qty:   math.Float32frombits(binary.LittleEndian.Uint32(qty[i*4:])),
			Side:  side[i],
		}
	}
	return rows, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
