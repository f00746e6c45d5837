package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans each write out to all its writers, e.g. stdout and the
// rotating log file. A failing writer does not stop the others.
type CombinedWriter struct {
	Writers []io.Writer
	Err     error
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		Writers: append([]io.Writer{}, writers...),
	}
}

// Write returns the sum of bytes written by all writers, and all their errors combined.
// The last combined error is also kept in Err.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var n int
	var err error
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		n += written
	}
	cw.Err = err
	return n, err
}
