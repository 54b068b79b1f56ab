package logger

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// sink receives every line at or above min.
type sink struct {
	w   io.Writer
	min slog.Level
}

type queuedLine struct {
	level slog.Level
	data  []byte
}

type bufferedSink struct {
	buf *bufio.Writer
	min slog.Level
}

// asyncWriter fans lines out to sinks from a single goroutine.
type asyncWriter struct {
	queue chan queuedLine
	flush chan chan error
	done  chan struct{}

	// mu guards closed and the queue channel against send after close.
	mu     sync.RWMutex
	closed bool

	sinks []bufferedSink

	errMu sync.Mutex
	err   error
}

func newAsyncWriter(sinks []sink, queueSize int) *asyncWriter {
	if queueSize <= 0 {
		queueSize = 256
	}
	w := &asyncWriter{
		queue: make(chan queuedLine, queueSize),
		flush: make(chan chan error),
		done:  make(chan struct{}),
	}
	for _, s := range sinks {
		if s.w != nil {
			w.sinks = append(w.sinks, bufferedSink{buf: bufio.NewWriterSize(s.w, 64*1024), min: s.min})
		}
	}
	go w.loop()
	return w
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				w.setErr(w.flushAll())
				return
			}
			w.setErr(w.writeLine(line))
		case ack := <-w.flush:
			w.drain()
			ack <- w.flushAll()
		}
	}
}

// Write queues a copy of p. It blocks while the queue is full rather than dropping lines.
func (w *asyncWriter) Write(level slog.Level, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := w.Err(); err != nil {
		return err
	}
	line := queuedLine{level: level, data: append([]byte(nil), p...)}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.queue <- line
	return nil
}

// Flush waits until everything queued so far reached the sinks.
func (w *asyncWriter) Flush() error {
	w.mu.RLock()
	closed := w.closed
	w.mu.RUnlock()
	if closed {
		return w.Err()
	}
	ack := make(chan error, 1)
	select {
	case w.flush <- ack:
		return <-ack
	case <-w.done:
		return w.Err()
	}
}

// Close drains the queue, flushes the sinks and reports the first write error.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
	return w.Err()
}

// writeLine runs on the loop goroutine only. Lines are flushed at once so a
// crash loses at most what is still queued.
func (w *asyncWriter) writeLine(line queuedLine) error {
	for _, s := range w.sinks {
		if line.level < s.min {
			continue
		}
		if _, err := s.buf.Write(line.data); err != nil {
			return err
		}
		if err := s.buf.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// drain writes whatever is already queued so a flush never overtakes it.
func (w *asyncWriter) drain() {
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				return
			}
			w.setErr(w.writeLine(line))
		default:
			return
		}
	}
}

func (w *asyncWriter) flushAll() error {
	var errs []error
	for _, s := range w.sinks {
		errs = append(errs, s.buf.Flush())
	}
	return errors.Join(errs...)
}

// Err returns the first error a sink reported.
func (w *asyncWriter) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

func (w *asyncWriter) setErr(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
