package logger

import (
	"os"
	"path/filepath"
	"sync"
)

// FileSink is an io.Writer that opens its file in append mode, writes one
// entry and closes the file again. A crash therefore never loses a line
// that was already logged. Failures to open or write are swallowed; logging
// must never take the process down.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink returns a sink appending to path. The parent directory is
// created on a best-effort basis.
func NewFileSink(path string) *FileSink {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	return &FileSink{path: path}
}

// Write appends p to the file. It always reports success.
func (s *FileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return len(p), nil
	}
	_, _ = f.Write(p)
	_ = f.Close()
	return len(p), nil
}
