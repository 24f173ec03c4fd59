// Package chardev provides a character backend that reads bytes on its own
// goroutine and hands them to the engine through an AsyncNotifier.
package chardev

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"

	"github.com/sarchlab/akitasync/sim/timing"
	"github.com/sarchlab/akitasync/suspend"
	"golang.org/x/term"
)

// InterruptByte is delivered when the process receives SIGINT.
const InterruptByte byte = 0x03

// A Sink consumes the bytes a Backend receives. It is called on the engine
// goroutine.
type Sink interface {
	Receive(now timing.VTimeInSec, b byte)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(now timing.VTimeInSec, b byte)

// Receive calls f(now, b).
func (f SinkFunc) Receive(now timing.VTimeInSec, b byte) {
	f(now, b)
}

// Backend is a character device backend. Bytes read from the input are kept
// in a queue until the engine delivers them to the sink. While bytes are
// queued, or while the input is open in keep-alive mode, the backend is
// attached as a suspending channel so that the engine waits for them instead
// of finishing.
type Backend struct {
	name      string
	notifier  *suspend.AsyncNotifier
	sink      Sink
	input     io.Reader
	output    io.Writer
	keepAlive bool

	lock      sync.Mutex
	pending   []byte
	inputOpen bool
	attached  bool
	received  uint64
	delivered uint64
	readErr   error

	interrupts chan os.Signal
	done       chan struct{}
	startOnce  sync.Once
	stopOnce   sync.Once

	termFD    int
	termState *term.State
}

// Name returns the name of the backend.
func (b *Backend) Name() string {
	return b.name
}

// Start makes the terminal raw if one is configured, starts forwarding
// interrupts if enabled, and starts the reader goroutine.
func (b *Backend) Start() error {
	var err error

	b.startOnce.Do(func() {
		err = b.makeRaw()
		if err != nil {
			return
		}

		if b.interrupts != nil {
			signal.Notify(b.interrupts, os.Interrupt)
			go b.forwardInterrupts()
		}

		b.lock.Lock()
		b.inputOpen = b.input != nil
		b.updateAttachmentLocked()
		b.lock.Unlock()

		if b.input == nil {
			close(b.done)
			return
		}

		go b.readLoop()
	})

	return err
}

func (b *Backend) makeRaw() error {
	if b.termFD < 0 || !term.IsTerminal(b.termFD) {
		return nil
	}

	state, err := term.MakeRaw(b.termFD)
	if err != nil {
		return fmt.Errorf("chardev %s: make terminal raw: %w", b.name, err)
	}

	b.termState = state

	return nil
}

func (b *Backend) readLoop() {
	defer close(b.done)

	buf := make([]byte, 256)
	for {
		n, err := b.input.Read(buf)
		if n > 0 {
			b.enqueue(buf[:n]...)
		}

		if err != nil {
			b.closeInput(err)
			return
		}
	}
}

func (b *Backend) closeInput(err error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if !errors.Is(err, io.EOF) {
		b.readErr = err
	}

	b.inputOpen = false
	b.updateAttachmentLocked()
}

func (b *Backend) forwardInterrupts() {
	for range b.interrupts {
		b.enqueue(InterruptByte)
	}
}

// Inject queues bytes as if they were read from the input. It is safe to
// call from any goroutine.
func (b *Backend) Inject(data ...byte) {
	b.enqueue(data...)
}

func (b *Backend) enqueue(data ...byte) {
	if len(data) == 0 {
		return
	}

	b.lock.Lock()
	b.pending = append(b.pending, data...)
	b.received += uint64(len(data))
	b.updateAttachmentLocked()
	b.lock.Unlock()

	b.notifier.Notify(0)
}

// updateAttachmentLocked keeps the notifier attached exactly while there is
// something the engine has to wait for.
func (b *Backend) updateAttachmentLocked() {
	want := len(b.pending) > 0 || (b.keepAlive && b.inputOpen)

	switch {
	case want && !b.attached:
		b.attached = b.notifier.AttachSuspending()
	case !want && b.attached:
		b.notifier.DetachSuspending()
		b.attached = false
	}
}

// Handle delivers the queued bytes to the sink.
func (b *Backend) Handle(e timing.Event) error {
	if _, ok := e.(suspend.AsyncEvent); !ok {
		log.Panicf("chardev %s: cannot handle event of type %T", b.name, e)
	}

	b.lock.Lock()
	data := b.pending
	b.pending = nil
	b.lock.Unlock()

	for _, c := range data {
		b.sink.Receive(e.Time(), c)
	}

	b.lock.Lock()
	b.delivered += uint64(len(data))
	b.updateAttachmentLocked()
	b.lock.Unlock()

	return nil
}

// Write sends data to the output.
func (b *Backend) Write(data []byte) (int, error) {
	if b.output == nil {
		return len(data), nil
	}

	n, err := b.output.Write(data)
	if err != nil {
		return n, fmt.Errorf("chardev %s: write: %w", b.name, err)
	}

	return n, nil
}

// Stats reports how many bytes were received and delivered.
func (b *Backend) Stats() (received, delivered uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.received, b.delivered
}

// Err returns the error that ended the reader, if it was not io.EOF.
func (b *Backend) Err() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.readErr
}

// Done is closed when the reader goroutine exits.
func (b *Backend) Done() <-chan struct{} {
	return b.done
}

// Stop stops forwarding interrupts, restores the terminal and detaches the
// backend. A reader blocked in Read is not interrupted; it exits on its
// next read error.
func (b *Backend) Stop() {
	b.stopOnce.Do(func() {
		if b.interrupts != nil {
			signal.Stop(b.interrupts)
			close(b.interrupts)
		}

		b.restoreTerminal()

		b.lock.Lock()
		b.inputOpen = false
		b.pending = nil
		b.updateAttachmentLocked()
		b.lock.Unlock()
	})
}

func (b *Backend) restoreTerminal() {
	b.lock.Lock()
	state := b.termState
	b.termState = nil
	b.lock.Unlock()

	if state != nil {
		_ = term.Restore(b.termFD, state)
	}
}
