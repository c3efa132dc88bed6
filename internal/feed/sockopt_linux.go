package feed

import (
	"log/slog"
	"net"

	"golang.org/x/sys/unix"
)

// tuneSocket applies the low-latency socket options to the TCP connection
// underneath the WebSocket: disable Nagle, raise the qdisc priority, and
// mark the traffic class low-delay. Failures are logged and ignored; the
// connection stays usable without them.
func tuneSocket(c net.Conn, logger *slog.Logger) {
	type netConner interface{ NetConn() net.Conn }
	for {
		nc, ok := c.(netConner)
		if !ok {
			break
		}
		c = nc.NetConn()
	}

	tcp, ok := c.(*net.TCPConn)
	if !ok {
		logger.Debug("socket tuning skipped", "conn_type", "non-tcp")
		return
	}
	raw, err := tcp.SyscallConn()
	if err != nil {
		logger.Warn("socket tuning unavailable", "error", err)
		return
	}

	raw.Control(func(fd uintptr) {
		opts := []struct {
			name              string
			level, opt, value int
		}{
			{"TCP_NODELAY", unix.IPPROTO_TCP, unix.TCP_NODELAY, 1},
			{"SO_PRIORITY", unix.SOL_SOCKET, unix.SO_PRIORITY, 6},
			{"IP_TOS", unix.IPPROTO_IP, unix.IP_TOS, 0x10}, // IPTOS_LOWDELAY (not exported by x/sys/unix)
		}
		for _, o := range opts {
			if err := unix.SetsockoptInt(int(fd), o.level, o.opt, o.value); err != nil {
				logger.Warn("setsockopt failed", "opt", o.name, "error", err)
			}
		}
	})
}

// pinToCPU binds the calling thread to one CPU. Call with the OS thread
// locked.
func pinToCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

// lockMemory wires all current and future pages to avoid page faults on
// the hot path. Needs CAP_IPC_LOCK or a generous RLIMIT_MEMLOCK.
func lockMemory() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}
