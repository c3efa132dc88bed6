package colfile

import (
	"encoding/binary"
	"testing"
)

func TestHeaderLayout(t *testing.T) {
	h := newHeader("BTC-USD", 1717243200, DefaultCapacity)

	if h.ColOff[ColTS] != HeaderSize {
		t.Errorf("col_off[TS] = %d, want %d", h.ColOff[ColTS], HeaderSize)
	}
	for c := 0; c < ColCount-1; c++ {
		if h.ColOff[c]+h.ColSz[c] != h.ColOff[c+1] {
			t.Errorf("column %d not contiguous: off %d + sz %d != next off %d",
				c, h.ColOff[c], h.ColSz[c], h.ColOff[c+1])
		}
	}

	wantSizes := [ColCount]uint64{
		DefaultCapacity * 8,
		DefaultCapacity * 4,
		DefaultCapacity * 4,
		DefaultCapacity * 1,
	}
	for c, want := range wantSizes {
		if h.ColSz[c] != want {
			t.Errorf("col_sz[%d] = %d, want %d", c, h.ColSz[c], want)
		}
	}

	if want := uint64(HeaderSize) + DefaultCapacity*17; h.fileSize() != want {
		t.Errorf("fileSize() = %d, want %d", h.fileSize(), want)
	}
}

func TestHeaderMarshalOffsets(t *testing.T) {
	h := newHeader("BTC-USD", 1717243200, 1<<10)
	h.Rows = 42

	var buf [HeaderSize]byte
	h.marshal(buf[:])

	if string(buf[0:6]) != "L2COL\n" {
		t.Errorf("magic = %q, want L2COL\\n", buf[0:6])
	}
	if got := binary.LittleEndian.Uint16(buf[6:]); got != 256 {
		t.Errorf("header_size = %d, want 256", got)
	}
	if got := binary.LittleEndian.Uint16(buf[8:]); got != 1 {
		t.Errorf("version = %d, want 1", got)
	}
	if string(buf[16:23]) != "BTC-USD" || buf[23] != 0 {
		t.Errorf("product bytes = %q, want BTC-USD null-padded", buf[16:32])
	}
	if got := binary.LittleEndian.Uint64(buf[32:]); got != 1717243200 {
		t.Errorf("hour_epoch_start = %d, want 1717243200", got)
	}
	if got := binary.LittleEndian.Uint64(buf[40:]); got != 42 {
		t.Errorf("rows = %d, want 42", got)
	}
	if got := binary.LittleEndian.Uint64(buf[48:]); got != 1<<10 {
		t.Errorf("capacity = %d, want %d", got, 1<<10)
	}
	if got := binary.LittleEndian.Uint64(buf[56:]); got != 256 {
		t.Errorf("col_off[0] = %d, want 256", got)
	}

	// Padding after the column tables stays zero.
	for i := 120; i < HeaderSize; i++ {
		if buf[i] != 0 {
			t.Errorf("padding byte %d = %#x, want 0", i, buf[i])
			break
		}
	}

	parsed, err := parseHeader(buf[:])
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if parsed.Product != "BTC-USD" || parsed.Rows != 42 || parsed.Capacity != 1<<10 {
		t.Errorf("parsed header = %+v", parsed)
	}
}

func TestParseHeaderRejectsGarbage(t *testing.T) {
	var buf [HeaderSize]byte
	copy(buf[:], "NOTL2C")
	if _, err := parseHeader(buf[:]); err == nil {
		t.Error("parseHeader accepted bad magic")
	}

	h := newHeader("BTC-USD", 0, 8)
	h.marshal(buf[:])
	binary.LittleEndian.PutUint16(buf[8:], 9)
	if _, err := parseHeader(buf[:]); err == nil {
		t.Error("parseHeader accepted unknown version")
	}
}
