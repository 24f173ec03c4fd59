package vcpu

import "github.com/sarchlab/akitasync/sim/timing"

// Builder can build CPUs.
type Builder struct {
	engine           Engine
	coordinator      Coordinator
	progress         ProgressReporter
	freq             timing.Freq
	ipc              uint64
	initialWork      uint64
	waitForInterrupt bool
}

// MakeBuilder creates a new Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * timing.GHz,
		ipc:  1,
	}
}

// WithEngine sets the engine the CPU runs on.
func (b Builder) WithEngine(engine Engine) Builder {
	b.engine = engine
	return b
}

// WithCoordinator sets the coordinator the CPU votes with.
func (b Builder) WithCoordinator(c Coordinator) Builder {
	b.coordinator = c
	return b
}

// WithFreq sets the clock frequency.
func (b Builder) WithFreq(freq timing.Freq) Builder {
	b.freq = freq
	return b
}

// WithIPC sets how many instructions are executed per cycle.
func (b Builder) WithIPC(ipc uint64) Builder {
	b.ipc = ipc
	return b
}

// WithInitialWork sets the instruction budget the CPU starts with.
func (b Builder) WithInitialWork(instructions uint64) Builder {
	b.initialWork = instructions
	return b
}

// WithWaitForInterrupt makes an idle CPU request suspension.
func (b Builder) WithWaitForInterrupt(wait bool) Builder {
	b.waitForInterrupt = wait
	return b
}

// WithProgressReporter sets where executed instructions are reported.
func (b Builder) WithProgressReporter(p ProgressReporter) Builder {
	b.progress = p
	return b
}

// Build creates a new CPU and registers it with the engine.
func (b Builder) Build(name string) *CPU {
	if b.engine == nil {
		panic("vcpu: engine is not set")
	}

	if b.coordinator == nil {
		panic("vcpu: coordinator is not set")
	}

	if b.ipc == 0 {
		panic("vcpu: ipc must be positive")
	}

	c := &CPU{
		name:             name,
		coordinator:      b.coordinator,
		progress:         b.progress,
		ipc:              b.ipc,
		waitForInterrupt: b.waitForInterrupt,
		remaining:        b.initialWork,
	}
	c.TickScheduler = timing.NewTickScheduler(c, b.engine, b.freq)
	c.callerID = b.engine.RegisterHandler(c)

	return c
}
