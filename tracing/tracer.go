// Package tracing collects the transitions of the suspend coordinator.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/akitasync/sim/hooking"
	"github.com/sarchlab/akitasync/suspend"
)

// NamedHookable represent something both have a name and can be hooked
type NamedHookable interface {
	Name() string
	hooking.Hookable
}

// A Tracer receives every transition the coordinator reports. Trace may be
// called from foreign goroutines.
type Tracer interface {
	Trace(pos *hooking.HookPos, rec suspend.Record)
}

// CollectTrace let the tracer to collect trace from a domain
func CollectTrace(domain NamedHookable, tracer Tracer) {
	hooks := domain.Hooks()
	for _, hook := range hooks {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{t: tracer}
	domain.AcceptHook(&h)
}

// A traceHook is a hook that forwards coordinator records to a tracer.
type traceHook struct {
	t Tracer
}

// Func calls the tracer when the hook is triggered
func (h *traceHook) Func(ctx hooking.HookCtx) {
	rec, ok := ctx.Item.(suspend.Record)
	if !ok {
		return
	}

	h.t.Trace(ctx.Pos, rec)
}
