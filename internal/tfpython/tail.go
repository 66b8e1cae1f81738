package tfpython

import (
	"io"
	"strings"
	"sync"
)

// tailBuffer keeps the last max bytes written to it and optionally mirrors
// every write to another writer. exec.Cmd copies stderr from its own
// goroutine, hence the lock.
type tailBuffer struct {
	mu     sync.Mutex
	max    int
	buf    []byte
	mirror io.Writer
}

func newTailBuffer(max int, mirror io.Writer) *tailBuffer {
	return &tailBuffer{max: max, mirror: mirror}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mirror != nil {
		_, _ = t.mirror.Write(p)
	}
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

// String returns the retained output, starting at a line boundary when the
// buffer was truncated.
func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := string(t.buf)
	if len(t.buf) >= t.max {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
	}
	return strings.TrimSpace(s)
}
