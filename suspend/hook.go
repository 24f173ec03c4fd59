package suspend

import (
	"log"

	"github.com/sarchlab/akitasync/sim/hooking"
	"github.com/sarchlab/akitasync/sim/timing"
)

// Hook positions invoked by the Coordinator. Attach, Detach and AsyncWakeup
// may be invoked on foreign goroutines.
var (
	HookPosSuspendAll    = &hooking.HookPos{Name: "SuspendAll"}
	HookPosUnsuspendAll  = &hooking.HookPos{Name: "UnsuspendAll"}
	HookPosUnsuspendable = &hooking.HookPos{Name: "Unsuspendable"}
	HookPosSuspendable   = &hooking.HookPos{Name: "Suspendable"}
	HookPosAttach        = &hooking.HookPos{Name: "AttachSuspending"}
	HookPosDetach        = &hooking.HookPos{Name: "DetachSuspending"}
	HookPosDecision      = &hooking.HookPos{Name: "Decision"}
	HookPosSleep         = &hooking.HookPos{Name: "Sleep"}
	HookPosWake          = &hooking.HookPos{Name: "Wake"}
	HookPosAsyncWakeup   = &hooking.HookPos{Name: "AsyncWakeup"}
)

// Record is the item passed to hooks. Fields that do not apply to a position
// are left zero.
type Record struct {
	Time     timing.VTimeInSec
	Caller   timing.CallerID
	Channel  string
	Count    uint
	Decision Decision
}

// LogHook prints coordinator transitions.
type LogHook struct {
	logger *log.Logger
}

// NewLogHook creates a LogHook that writes to logger.
func NewLogHook(logger *log.Logger) *LogHook {
	return &LogHook{logger: logger}
}

// Func prints one line per transition.
func (h *LogHook) Func(ctx hooking.HookCtx) {
	rec, ok := ctx.Item.(Record)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosSuspendAll, HookPosUnsuspendAll,
		HookPosUnsuspendable, HookPosSuspendable:
		h.logger.Printf("%.10f, suspend: %s() caller %d, count %d",
			rec.Time, ctx.Pos.Name, rec.Caller, rec.Count)
	case HookPosAttach, HookPosDetach:
		h.logger.Printf("%.10f, suspend: %s %s, %d attached",
			rec.Time, ctx.Pos.Name, rec.Channel, rec.Count)
	case HookPosDecision:
		h.logger.Printf("%.10f, suspend: %s", rec.Time, rec.Decision)
	case HookPosSleep:
		h.logger.Printf("%.10f, suspend: suspended", rec.Time)
	case HookPosWake:
		h.logger.Printf("%.10f, suspend: wake", rec.Time)
	case HookPosAsyncWakeup:
		h.logger.Printf("%.10f, suspend: async wakeup", rec.Time)
	}
}
