package link

import (
	"strings"

	"gopkg.in/tomb.v2"
)

// startReader launches the background goroutine that drains diagnostic text
// the firmware prints over serial. Lines become debug log entries; nothing
// in the protocol depends on them.
func (l *Link) startReader(p Port) {
	t := &tomb.Tomb{}
	l.mu.Lock()
	l.reader = t
	l.mu.Unlock()
	t.Go(func() error {
		l.drainDiagnostics(t, p)
		return nil
	})
}

func (l *Link) drainDiagnostics(t *tomb.Tomb, p Port) {
	if err := p.SetReadTimeout(readerIdlePoll); err != nil {
		l.logger.Debug("Diagnostics reader disabled, port does not support read timeouts", "error", err)
		return
	}

	buf := make([]byte, 256)
	var line []byte
	for {
		select {
		case <-t.Dying():
			return
		default:
		}

		n, err := p.Read(buf)
		if err != nil {
			// Port closed under us or the transport faulted; either way
			// the reader's job is over. Disconnect handles the rest.
			return
		}
		if n == 0 {
			// Idle poll timeout, loop to re-check Dying.
			continue
		}
		for _, b := range buf[:n] {
			if b == '\n' {
				if s := strings.TrimSpace(string(line)); s != "" {
					l.logger.Debug("Device diagnostic", "line", s)
				}
				line = line[:0]
				continue
			}
			line = append(line, b)
			if len(line) > 512 {
				// Firmware never prints lines this long; discard garbage.
				line = line[:0]
			}
		}
	}
}
