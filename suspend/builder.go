package suspend

import (
	"log"
	"sync"

	"github.com/sarchlab/akitasync/sim/hooking"
	"github.com/sarchlab/akitasync/sim/timing"
)

// Builder can build a Coordinator.
type Builder struct {
	engine Engine
	hooks  []hooking.Hook
}

// MakeBuilder creates a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the engine the coordinator puts to sleep.
func (b Builder) WithEngine(engine Engine) Builder {
	b.engine = engine
	return b
}

// WithHook adds a hook that is attached before the coordinator is wired to
// the engine.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(b.hooks, hook)
	return b
}

// WithLogger attaches a LogHook that writes to logger.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	return b.WithHook(NewLogHook(logger))
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("suspend: engine is not set")
	}
}

// Build creates the Coordinator, registers it with the engine as an event
// handler and an idle handler, and claims the process-wide slot. Building a
// second Coordinator before the first is shut down panics.
func (b Builder) Build(name string) *Coordinator {
	b.parametersMustBeValid()

	c := &Coordinator{
		HookableBase:     hooking.NewHookableBase(),
		name:             name,
		engine:           b.engine,
		suspendAllReq:    make(map[timing.CallerID]bool),
		unsuspendableReq: make(map[timing.CallerID]bool),
		channels:         NewChannelRegistry(),
	}
	c.cond = sync.NewCond(&c.lock)

	claimSingleton(c)

	for _, h := range b.hooks {
		c.AcceptHook(h)
	}

	c.callerID = b.engine.RegisterHandler(c)
	b.engine.RegisterIdleHandler(c)

	return c
}
