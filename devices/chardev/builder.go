package chardev

import (
	"io"
	"os"

	"github.com/sarchlab/akitasync/suspend"
)

// Builder can build character backends.
type Builder struct {
	coordinator       *suspend.Coordinator
	sink              Sink
	input             io.Reader
	output            io.Writer
	keepAlive         bool
	forwardInterrupts bool
	termFD            int
}

// MakeBuilder creates a new Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		termFD: -1,
	}
}

// WithCoordinator sets the coordinator that the backend wakes.
func (b Builder) WithCoordinator(c *suspend.Coordinator) Builder {
	b.coordinator = c
	return b
}

// WithSink sets where received bytes are delivered.
func (b Builder) WithSink(sink Sink) Builder {
	b.sink = sink
	return b
}

// WithInput sets the reader that the backend reads from.
func (b Builder) WithInput(r io.Reader) Builder {
	b.input = r
	return b
}

// WithOutput sets where Write sends bytes to.
func (b Builder) WithOutput(w io.Writer) Builder {
	b.output = w
	return b
}

// WithKeepAlive keeps the backend attached as a suspending channel for as
// long as the input is open, so that the engine waits for input rather than
// finishing.
func (b Builder) WithKeepAlive(keepAlive bool) Builder {
	b.keepAlive = keepAlive
	return b
}

// WithInterruptForwarding turns SIGINT into InterruptByte.
func (b Builder) WithInterruptForwarding(forward bool) Builder {
	b.forwardInterrupts = forward
	return b
}

// WithRawTerminal puts the terminal behind fd into raw mode while the
// backend runs. Nothing happens if fd is not a terminal.
func (b Builder) WithRawTerminal(fd int) Builder {
	b.termFD = fd
	return b
}

// Build creates a new Backend.
func (b Builder) Build(name string) *Backend {
	if b.coordinator == nil {
		panic("chardev: coordinator is not set")
	}

	if b.sink == nil {
		panic("chardev: sink is not set")
	}

	backend := &Backend{
		name:      name,
		sink:      b.sink,
		input:     b.input,
		output:    b.output,
		keepAlive: b.keepAlive,
		termFD:    b.termFD,
		done:      make(chan struct{}),
	}

	if b.forwardInterrupts {
		backend.interrupts = make(chan os.Signal, 1)
	}

	backend.notifier = suspend.NewAsyncNotifier(
		name+".Notifier", b.coordinator, backend, false)

	return backend
}
