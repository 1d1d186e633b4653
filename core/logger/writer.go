package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// asyncWriter moves log lines off the calling goroutine and fans them out to every sink.
// Lines are never dropped: a full queue makes Write block.
type asyncWriter struct {
	lines   chan []byte
	flushes chan chan error
	done    chan struct{}
	closing sync.Once

	mu    sync.Mutex
	sinks []*bufio.Writer
	err   error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		lines:   make(chan []byte, 256),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				w.flush()
				return
			}
			w.write(line)
		case ack := <-w.flushes:
			ack <- w.flush()
		}
	}
}

// Write queues a copy of p.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.failure(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.lines <- append([]byte(nil), p...)
	return nil
}

// Flush blocks until every queued line has reached the sinks.
func (w *asyncWriter) Flush() error {
	if err := w.failure(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	select {
	case w.flushes <- ack:
		return <-ack
	case <-w.done:
		return w.failure()
	}
}

// Close drains the queue and returns the first write error seen.
func (w *asyncWriter) Close() error {
	w.closing.Do(func() { close(w.lines) })
	<-w.done
	return w.failure()
}

func (w *asyncWriter) write(p []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil {
			w.setLocked(err)
			return
		}
		if err := sink.Flush(); err != nil {
			w.setLocked(err)
			return
		}
	}
}

func (w *asyncWriter) flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) failure() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *asyncWriter) setLocked(err error) {
	if w.err == nil {
		w.err = err
	}
}
