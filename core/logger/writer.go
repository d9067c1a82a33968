package logger

import (
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// entry is either a log line or a flush barrier (ack set).
type entry struct {
	line []byte
	ack  chan struct{}
}

// asyncWriter moves log output off the calling goroutine. A single loop
// writes lines to every sink in the order they were accepted.
type asyncWriter struct {
	queue chan entry
	done  chan struct{}
	out   io.Writer

	mu     sync.RWMutex
	closed bool

	errMu sync.Mutex
	err   error
}

func newAsyncWriter(writers []io.Writer, queueSize int) *asyncWriter {
	if queueSize <= 0 {
		queueSize = 256
	}
	sinks := make([]io.Writer, 0, len(writers))
	for _, w := range writers {
		if w != nil {
			sinks = append(sinks, w)
		}
	}
	w := &asyncWriter{
		queue: make(chan entry, queueSize),
		done:  make(chan struct{}),
		out:   io.MultiWriter(sinks...),
	}
	go w.loop()
	return w
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for e := range w.queue {
		if e.ack != nil {
			close(e.ack)
			continue
		}
		if _, err := w.out.Write(e.line); err != nil {
			w.setErr(err)
		}
	}
}

// Write queues a copy of p. It blocks while the queue is full so log lines
// are never dropped. After the first sink error every call returns it.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.getErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	return w.send(entry{line: append([]byte(nil), p...)})
}

// Flush returns once every line accepted before it has reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan struct{})
	if err := w.send(entry{ack: ack}); err != nil {
		// Closed writers have drained already.
		return w.getErr()
	}
	<-ack
	return w.getErr()
}

// Close drains the queue and reports the first sink error.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
	return w.getErr()
}

func (w *asyncWriter) send(e entry) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.queue <- e
	return nil
}

func (w *asyncWriter) getErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

func (w *asyncWriter) setErr(err error) {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
