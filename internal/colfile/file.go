package colfile

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// hourPath derives <base>/YYYYMMDD/HH00.bin from an hour start, in UTC.
// The minute field is always 00; files have hour granularity.
func hourPath(base string, hourEpochStart uint64) (dir, name string) {
	t := time.Unix(int64(hourEpochStart), 0).UTC()
	return filepath.Join(base, t.Format("20060102")), fmt.Sprintf("%02d00.bin", t.Hour())
}

// preallocate reserves the full file extent up front so appends never
// extend the file. posix_fallocate is preferred; ftruncate is the
// fallback on filesystems that reject it.
func preallocate(fd int, size int64) error {
	if err := unix.Fallocate(fd, 0, 0, size); err == nil {
		return nil
	}
	return unix.Ftruncate(fd, size)
}

// openFile creates, preallocates, and maps the hourly file for hourS,
// closing any file currently open. On success the column views point
// into the new mapping and the row counter is reset.
func (w *Writer) openFile(hourS uint64) error {
	w.closeFile()

	hdr := newHeader(w.opt.Product, hourS, w.opt.Capacity)
	size := int64(hdr.fileSize())

	dir, name := hourPath(w.opt.BaseDir, hourS)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if err := preallocate(int(f.Fd()), size); err != nil {
		f.Close()
		return fmt.Errorf("preallocate %s (%d bytes): %w", path, size, err)
	}

	m, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return fmt.Errorf("mmap %s: %w", path, err)
	}

	hdr.marshal(m[:HeaderSize])

	w.f = f
	w.mapped = m
	w.hdr = hdr
	w.ts = m[hdr.ColOff[ColTS] : hdr.ColOff[ColTS]+hdr.ColSz[ColTS]]
	w.px = m[hdr.ColOff[ColPX] : hdr.ColOff[ColPX]+hdr.ColSz[ColPX]]
	w.qty = m[hdr.ColOff[ColQty] : hdr.ColOff[ColQty]+hdr.ColSz[ColQty]]
	w.side = m[hdr.ColOff[ColSide] : hdr.ColOff[ColSide]+hdr.ColSz[ColSide]]
	w.rows.Store(0)
	w.hourStart.Store(hourS)

	w.logger.Info("opened hour file",
		"path", path,
		"hour_epoch_start", hourS,
		"capacity", hdr.Capacity,
	)
	return nil
}

// updateRowsInHeader copies the current row count into the mapped header
// at the exact offset of the rows field.
func (w *Writer) updateRowsInHeader() {
	binary.LittleEndian.PutUint64(w.mapped[offRows:], w.hdr.Rows)
}

// closeFile finalizes the header row count, syncs and unmaps the file,
// and resets all per-file state. Header finalization always precedes the
// unmap so a completed file never understates its rows.
func (w *Writer) closeFile() {
	if w.f == nil {
		return
	}

	w.hdr.Rows = w.rows.Load()
	w.updateRowsInHeader()

	if err := unix.Msync(w.mapped, unix.MS_SYNC); err != nil {
		w.logger.Warn("msync failed", "error", err)
	}
	if err := unix.Munmap(w.mapped); err != nil {
		w.logger.Warn("munmap failed", "error", err)
	}
	if err := w.f.Sync(); err != nil {
		w.logger.Warn("fsync failed", "error", err)
	}
	if err := w.f.Close(); err != nil {
		w.logger.Warn("close failed", "error", err)
	}

	w.logger.Info("closed hour file",
		"hour_epoch_start", w.hourStart.Load(),
		"rows", w.hdr.Rows,
	)

	w.f = nil
	w.mapped = nil
	w.ts, w.px, w.qty, w.side = nil, nil, nil, nil
	w.rows.Store(0)
	w.hourStart.Store(noHour)
}
