package suspend

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/akitasync/sim/timing"
)

var _ = Describe("AsyncNotifier", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
		hook     *recordingHook
		c        *Coordinator
		handler  *scriptedComponent
		n        *AsyncNotifier
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hook = &recordingHook{}
		engine, c = buildWithMockEngine(mockCtrl, hook)
		engine.EXPECT().Now().Return(timing.VTimeInSec(3)).AnyTimes()
		handler = &scriptedComponent{handle: func(timing.Event) {}}
		n = NewAsyncNotifier("uart-rx", c, handler, false)
	})

	AfterEach(func() {
		c.Shutdown()
		mockCtrl.Finish()
	})

	It("should request one update per batch", func() {
		engine.EXPECT().RequestAsyncUpdate(n).Times(1)

		Expect(n.Notify(0)).To(BeTrue())
		Expect(n.Notify(2)).To(BeTrue())

		Expect(c.Status().PendingWakeups).To(Equal(uint(2)))
		Expect(hook.count(HookPosAsyncWakeup)).To(Equal(2))
	})

	It("should turn queued notifications into events", func() {
		engine.EXPECT().RequestAsyncUpdate(n).Times(2)
		var scheduled []timing.Event
		engine.EXPECT().Schedule(gomock.Any()).
			Do(func(e timing.Event) { scheduled = append(scheduled, e) }).
			Times(3)

		n.Notify(0)
		n.Notify(2)
		n.Update()
		n.Notify(1)
		n.Update()

		Expect(scheduled).To(HaveLen(3))
		times := []timing.VTimeInSec{}
		for _, e := range scheduled {
			evt := e.(AsyncEvent)
			Expect(evt.Notifier).To(BeIdenticalTo(n))
			Expect(evt.Handler()).To(BeIdenticalTo(handler))
			Expect(evt.IsSecondary()).To(BeFalse())
			times = append(times, evt.Time())
		}
		Expect(times).To(Equal([]timing.VTimeInSec{3, 5, 4}))
	})

	It("should panic on a negative delay", func() {
		Expect(func() { n.Notify(-1) }).To(Panic())
	})

	It("should refuse notifications after shutdown", func() {
		c.Shutdown()

		Expect(n.Notify(0)).To(BeFalse())
		Expect(n.Wake()).To(BeFalse())
	})

	It("should wake without delivering", func() {
		Expect(n.Wake()).To(BeTrue())
		Expect(c.Status().PendingWakeups).To(Equal(uint(1)))
	})

	It("should act as a suspending channel", func() {
		engine.EXPECT().RequestAsyncUpdate(c)

		Expect(n.AttachSuspending()).To(BeTrue())
		Expect(n.AttachSuspending()).To(BeFalse())
		Expect(c.Status().SuspendingChannels).To(ConsistOf("uart-rx"))

		Expect(n.DetachSuspending()).To(BeTrue())
		Expect(c.Status().SuspendingChannels).To(BeEmpty())
	})

	It("should attach on creation if asked", func() {
		engine.EXPECT().RequestAsyncUpdate(c)

		attached := NewAsyncNotifier("uart-tx", c, handler, true)

		Expect(attached.Name()).To(Equal("uart-tx"))
		Expect(c.Status().SuspendingChannels).To(ConsistOf("uart-tx"))
	})
})
