package colfile

import (
	"encoding/binary"
	"log/slog"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/rickgao/l2-recorder/internal/model"
	"github.com/rickgao/l2-recorder/internal/queue"
)

// DefaultCapacity is the per-file row capacity: 2^24 rows per hour.
const DefaultCapacity = 1 << 24

// noHour marks the writer as having no file open.
const noHour = ^uint64(0)

// emptyPollInterval is how long the writer sleeps when the queue is empty.
const emptyPollInterval = 50 * time.Microsecond

// Options configures a Writer.
type Options struct {
	BaseDir string // data root; date directories are created beneath it
	Product string // product name stamped into headers (first 16 bytes kept)

	// Capacity is the per-file row capacity. Zero means DefaultCapacity.
	Capacity uint64

	// FsyncEveryRows, when non-zero, pushes the header row count to the
	// mapped bytes and fdatasyncs the file after every N appends.
	FsyncEveryRows uint32

	// QueueSize is the handoff ring capacity, a power of two. Zero means
	// queue.DefaultCapacity.
	QueueSize int
}

// Writer consumes rows from its handoff ring on a dedicated goroutine and
// persists them to hourly columnar files, rotating on hour boundaries.
//
// The writer goroutine is the only writer of the file descriptor and the
// mapping. Enqueue is the producer-side entry point and never blocks.
type Writer struct {
	opt    Options
	logger *slog.Logger

	q *queue.SPSC[model.L2Row]

	// per-file state, owned by the writer goroutine
	f      *os.File
	mapped []byte
	hdr    Header
	ts     []byte
	px     []byte
	qty    []byte
	side   []byte

	rows      atomic.Uint64
	dropped   atomic.Uint64
	hourStart atomic.Uint64

	running atomic.Bool
	stop    atomic.Bool
	wg      sync.WaitGroup
}

// NewWriter creates a Writer. Start must be called before rows are
// persisted; Enqueue is usable immediately.
func NewWriter(opt Options, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if opt.Capacity == 0 {
		opt.Capacity = DefaultCapacity
	}
	if opt.QueueSize == 0 {
		opt.QueueSize = queue.DefaultCapacity
	}
	if len(opt.Product) > 16 {
		opt.Product = opt.Product[:16]
	}

	w := &Writer{
		opt:    opt,
		logger: logger.With("component", "colfile"),
		q:      queue.NewSPSC[model.L2Row](opt.QueueSize),
	}
	w.hourStart.Store(noHour)
	return w
}

// Enqueue hands one row to the writer goroutine. It returns false when
// the ring is full and the row was dropped. Only the feed goroutine may
// call it.
func (w *Writer) Enqueue(r model.L2Row) bool {
	return w.q.Enqueue(r)
}

// Start spawns the writer goroutine. It is idempotent.
func (w *Writer) Start() {
	if w.running.Swap(true) {
		return
	}
	w.stop.Store(false)
	w.wg.Add(1)
	go w.run()
}

// Stop signals the writer goroutine to drain the remaining queued rows
// and exit. Use Join to wait for completion.
func (w *Writer) Stop() {
	w.stop.Store(true)
}

// Join blocks until the writer goroutine has drained, closed the current
// file, and exited.
func (w *Writer) Join() {
	w.wg.Wait()
	w.running.Store(false)
}

// Rows returns the row count of the currently open file.
func (w *Writer) Rows() uint64 {
	return w.rows.Load()
}

// Dropped returns the number of rows discarded by the writer because of
// capacity overflow or rotation failure.
func (w *Writer) Dropped() uint64 {
	return w.dropped.Load()
}

// HourStart returns the epoch-second hour of the open file, or
// math.MaxUint64 when no file is open.
func (w *Writer) HourStart() uint64 {
	return w.hourStart.Load()
}

// run is the writer goroutine: dequeue, rotate when the row's hour moves,
// append, and periodically push durability. After Stop it keeps draining
// until the queue is empty, then closes the file.
func (w *Writer) run() {
	defer w.wg.Done()

	var sinceSync uint32

	for {
		r, ok := w.q.Dequeue()
		if !ok {
			if w.stop.Load() {
				break
			}
			time.Sleep(emptyPollInterval)
			continue
		}
		w.persist(r, &sinceSync)
	}

	w.closeFile()
}

// persist appends one row to the open file, rotating first if the row's
// hour differs from the file's.
func (w *Writer) persist(r model.L2Row, sinceSync *uint32) {
	h := model.HourStart(r.TsNs)
	if w.hourStart.Load() != h {
		if err := w.openFile(h); err != nil {
			w.logger.Error("rotate failed", "hour_epoch_start", h, "error", err)
			w.dropped.Add(1)
			return
		}
		*sinceSync = 0
	}

	idx := w.rows.Load()
	if idx >= w.hdr.Capacity {
		w.dropped.Add(1)
		return
	}

	binary.LittleEndian.PutUint64(w.ts[idx*8:], r.TsNs)
	binary.LittleEndian.PutUint32(w.px[idx*4:], r.Price)
	binary.LittleEndian.PutUint32(w.qty[idx*4:], math.Float32bits(r.Qty))
	w.side[idx] = r.Side

	w.rows.Store(idx + 1)
	w.hdr.Rows = idx + 1

	if n := w.opt.FsyncEveryRows; n != 0 {
		if *sinceSync++; *sinceSync >= n {
			w.updateRowsInHeader()
			if err := unix.Fdatasync(int(w.f.Fd())); err != nil {
				w.logger.Warn("fdatasync failed", "error", err)
			}
			*sinceSync = 0
		}
	}
}
