package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/pkg/browser"
	"github.com/sarchlab/akitasync/datarecording"
	"github.com/sarchlab/akitasync/devices/chardev"
	"github.com/sarchlab/akitasync/devices/vcpu"
	"github.com/sarchlab/akitasync/monitoring"
	"github.com/sarchlab/akitasync/sim/timing"
	"github.com/sarchlab/akitasync/suspend"
	"github.com/sarchlab/akitasync/tracing"
)

// QuitByte ends the session the same way InterruptByte does.
const QuitByte byte = 'q'

type machineOptions struct {
	MonitorPort       int
	EnableMonitor     bool
	OpenBrowser       bool
	TracePath         string
	LogTransitions    bool
	LogEvents         bool
	FreqMHz           float64
	IPC               uint64
	InitialWork       uint64
	WorkPerByte       uint64
	WaitForInterrupt  bool
	KeepAlive         bool
	RawTerminalFD     int
	ForwardInterrupts bool
}

// machine is a console, a CPU, and the engine they run on.
type machine struct {
	opts   machineOptions
	logger *log.Logger

	engine      *timing.SerialEngine
	coordinator *suspend.Coordinator
	console     *console
	backend     *chardev.Backend
	cpu         *vcpu.CPU
	quit        *suspend.AsyncNotifier

	monitor  *monitoring.Monitor
	progress *monitoring.ProgressBar

	sleepTracer *tracing.SleepTimeTracer
	dbTracer    *tracing.DBTracer
	recorder    datarecording.DataRecorder
}

func newMachine(
	opts machineOptions,
	in io.Reader,
	out io.Writer,
	logger *log.Logger,
) *machine {
	m := &machine{opts: opts, logger: logger}

	m.engine = timing.NewSerialEngine()
	if opts.LogEvents {
		m.engine.AcceptHook(timing.NewEventLogger(logger))
	}

	cb := suspend.MakeBuilder().WithEngine(m.engine)
	if opts.LogTransitions {
		cb = cb.WithLogger(logger)
	}

	m.coordinator = cb.Build("Coordinator")

	m.buildTracers()
	m.buildMonitor()
	m.buildCPU()

	m.console = &console{
		cpu:         m.cpu,
		workPerByte: opts.WorkPerByte,
		logger:      logger,
	}
	m.backend = chardev.MakeBuilder().
		WithCoordinator(m.coordinator).
		WithSink(m.console).
		WithInput(in).
		WithOutput(out).
		WithKeepAlive(opts.KeepAlive).
		WithInterruptForwarding(opts.ForwardInterrupts).
		WithRawTerminal(opts.RawTerminalFD).
		Build("Console")
	m.console.backend = m.backend
	m.quit = suspend.NewAsyncNotifier(
		"Console.Quit", m.coordinator, m.console, false)

	if m.monitor != nil {
		m.monitor.RegisterComponent(m.cpu)
		m.monitor.RegisterComponent(m.backend)
	}

	return m
}

func (m *machine) buildTracers() {
	m.sleepTracer = tracing.NewSleepTimeTracer()
	tracing.CollectTrace(m.coordinator, m.sleepTracer)

	if m.opts.TracePath == "" {
		return
	}

	m.recorder = datarecording.New(m.opts.TracePath)
	m.dbTracer = tracing.NewDBTracer(m.recorder)
	tracing.CollectTrace(m.coordinator, m.dbTracer)
}

func (m *machine) buildMonitor() {
	if !m.opts.EnableMonitor {
		return
	}

	m.monitor = monitoring.NewMonitor().WithPortNumber(m.opts.MonitorPort)
	m.monitor.RegisterEngine(m.engine)
	m.monitor.RegisterCoordinator(m.coordinator)
	m.progress = m.monitor.CreateProgressBar("CPU", 0)
}

func (m *machine) buildCPU() {
	b := vcpu.MakeBuilder().
		WithEngine(m.engine).
		WithCoordinator(m.coordinator).
		WithFreq(timing.Freq(m.opts.FreqMHz) * timing.MHz).
		WithIPC(m.opts.IPC).
		WithInitialWork(m.opts.InitialWork).
		WithWaitForInterrupt(m.opts.WaitForInterrupt)

	if m.progress != nil {
		b = b.WithProgressReporter(m.progress)
	}

	m.cpu = b.Build("CPU")
}

// Run starts the devices and runs the engine until every component lets it
// finish. The coordinator is shut down before Run returns.
func (m *machine) Run() error {
	if m.monitor != nil {
		port := m.monitor.StartServer()
		if m.opts.OpenBrowser {
			url := fmt.Sprintf("http://localhost:%d", port)
			if err := browser.OpenURL(url); err != nil {
				m.logger.Printf("cannot open browser: %v", err)
			}
		}
	}

	if err := m.backend.Start(); err != nil {
		m.coordinator.Shutdown()
		return err
	}

	go func() {
		<-m.backend.Done()
		m.quit.Notify(0)
	}()

	m.cpu.Start()

	err := m.engine.Run()

	m.backend.Stop()
	m.coordinator.Shutdown()
	m.finish()

	if err != nil {
		return err
	}

	return m.backend.Err()
}

func (m *machine) finish() {
	if m.dbTracer != nil {
		m.dbTracer.Terminate()
	}

	if m.recorder != nil {
		if err := m.recorder.Close(); err != nil {
			m.logger.Printf("cannot close trace: %v", err)
		}
	}

	if m.monitor != nil {
		m.monitor.CompleteProgressBar(m.progress)
		if err := m.monitor.StopServer(); err != nil {
			m.logger.Printf("cannot stop monitor: %v", err)
		}
	}

	received, delivered := m.backend.Stats()
	m.logger.Printf(
		"virtual time %.10f, executed %d instructions, "+
			"received %d bytes, delivered %d, slept %d times for %s",
		m.engine.Now(), m.cpu.Executed(), received, delivered,
		m.sleepTracer.NumSleeps(), m.sleepTracer.TotalSleepTime())
}

// console echoes the bytes it receives and turns each of them into work for
// the CPU.
type console struct {
	backend     *chardev.Backend
	cpu         *vcpu.CPU
	workPerByte uint64
	logger      *log.Logger

	quitting bool
}

// Receive is called on the engine goroutine for every delivered byte.
func (c *console) Receive(_ timing.VTimeInSec, b byte) {
	if c.quitting {
		return
	}

	if b == chardev.InterruptByte || b == QuitByte {
		c.shutdown()
		return
	}

	if _, err := c.backend.Write([]byte{b}); err != nil {
		c.logger.Printf("console: %v", err)
	}

	c.cpu.Feed(c.workPerByte)
}

// Handle is reached when the input has closed. The CPU finishes the work it
// already has and the engine is allowed to run out of events.
func (c *console) Handle(e timing.Event) error {
	if _, ok := e.(suspend.AsyncEvent); !ok {
		log.Panicf("console: cannot handle event of type %T", e)
	}

	c.cpu.StopWaiting()

	return nil
}

// shutdown stops the input, which detaches it from the coordinator, and
// halts the CPU, which withdraws its votes.
func (c *console) shutdown() {
	if c.quitting {
		return
	}

	c.quitting = true
	c.backend.Stop()
	c.cpu.Halt()
}
