package feed

import (
	"encoding/json"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/l2-recorder/internal/colfile"
	"github.com/rickgao/l2-recorder/internal/model"
	"github.com/rickgao/l2-recorder/internal/parser"
)

// mlockall is process-scoped; one driver per process.
var lockMemoryOnce sync.Once

// Feed drives the WebSocket subscription and feeds the writer.
type Feed struct {
	cfg    Config
	logger *slog.Logger
	writer *colfile.Writer
	parser *parser.Parser
	creds  *Credentials

	mu   sync.Mutex
	conn *websocket.Conn

	running atomic.Bool
	wg      sync.WaitGroup
}

// New creates a Feed that records cfg.Pair through w. Credentials are
// picked up from the environment when present. Memory is locked once per
// process; failure to lock is logged and tolerated.
func New(cfg Config, w *colfile.Writer, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "feed")
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}

	f := &Feed{
		cfg:    cfg,
		logger: logger,
		writer: w,
		parser: parser.New(),
	}

	if creds, ok := CredentialsFromEnv(); ok {
		f.creds = creds
		logger.Info("credentials loaded", "key_name", creds.KeyName)
	}

	lockMemoryOnce.Do(func() {
		if err := lockMemory(); err != nil {
			logger.Warn("mlockall failed", "error", err)
		}
	})

	return f
}

// Start begins recording: the writer goroutine is started and the feed
// goroutine dials, subscribes, and enters the read loop. Idempotent.
func (f *Feed) Start() {
	if f.running.Swap(true) {
		return
	}
	f.writer.Start()
	f.wg.Add(1)
	go f.run()
}

// Stop ends the read loop by closing the connection. Rows already queued
// are still drained by the writer during Join.
func (f *Feed) Stop() {
	if !f.running.Swap(false) {
		return
	}
	f.mu.Lock()
	if f.conn != nil {
		f.conn.Close()
	}
	f.mu.Unlock()
}

// Join waits for the read loop to exit, then stops the writer and waits
// for it to drain and close the current file.
func (f *Feed) Join() {
	f.wg.Wait()
	f.writer.Stop()
	f.writer.Join()
}

// Running reports whether the read loop is live.
func (f *Feed) Running() bool {
	return f.running.Load()
}

// run owns the connection for its whole life: dial, tune, subscribe,
// read. It is pinned to one CPU so the parse hot path does not migrate.
func (f *Feed) run() {
	defer f.wg.Done()
	defer f.running.Store(false)

	runtime.LockOSThread()
	if f.cfg.PinCPU >= 0 {
		if err := pinToCPU(f.cfg.PinCPU); err != nil {
			f.logger.Warn("cpu pinning failed", "cpu", f.cfg.PinCPU, "error", err)
		} else {
			f.logger.Info("cpu pinned", "cpu", f.cfg.PinCPU)
		}
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(f.cfg.URL, nil)
	if err != nil {
		f.logger.Error("dial failed", "url", f.cfg.URL, "error", err)
		return
	}

	f.mu.Lock()
	if !f.running.Load() {
		// Stop raced the dial; it saw no connection to close.
		f.mu.Unlock()
		conn.Close()
		return
	}
	f.conn = conn
	f.mu.Unlock()

	f.logger.Info("connected", "url", f.cfg.URL)
	tuneSocket(conn.NetConn(), f.logger)

	if err := f.subscribe(conn); err != nil {
		f.logger.Error("subscribe failed", "error", err)
		f.running.Store(false)
		conn.Close()
		return
	}

	emit := func(r model.L2Row) {
		f.writer.Enqueue(r)
	}

	for f.running.Load() {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if f.running.Load() {
				f.logger.Error("connection closed", "error", err)
			}
			f.running.Store(false)
			break
		}
		if mt != websocket.TextMessage {
			continue
		}
		f.parser.Frame(data, emit)
	}

	conn.Close()
	f.logger.Info("read loop exited")
}

// subscribe sends the one level2 subscription request for the product.
func (f *Feed) subscribe(conn *websocket.Conn) error {
	req := subscribeRequest{
		Type:       "subscribe",
		ProductIDs: []string{f.cfg.Pair},
		Channel:    "level2",
	}
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	f.logger.Info("subscription sent", "product", f.cfg.Pair)
	return nil
}
