package timing

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

func mockEvent(
	ctrl *gomock.Controller,
	t VTimeInSec,
	handler Handler,
	secondary bool,
) *MockEvent {
	evt := NewMockEvent(ctrl)
	evt.EXPECT().Time().Return(t).AnyTimes()
	evt.EXPECT().Handler().Return(handler).AnyTimes()
	evt.EXPECT().IsSecondary().Return(secondary).AnyTimes()

	return evt
}

// blockingIdler blocks in its first Idle call until it is interrupted.
type blockingIdler struct {
	once        sync.Once
	interrupted chan struct{}
	entered     chan struct{}
}

func newBlockingIdler() *blockingIdler {
	return &blockingIdler{
		interrupted: make(chan struct{}),
		entered:     make(chan struct{}),
	}
}

func (b *blockingIdler) Idle(VTimeInSec) {
	select {
	case <-b.entered:
		return
	default:
	}

	close(b.entered)
	<-b.interrupted
}

func (b *blockingIdler) InterruptIdle() {
	b.once.Do(func() { close(b.interrupted) })
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should schedule events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		evt1 := mockEvent(mockCtrl, 4.0, handler1, false)
		evt2 := mockEvent(mockCtrl, 2.0, handler2, false)
		evt3 := mockEvent(mockCtrl, 3.0, handler1, false)
		evt4 := mockEvent(mockCtrl, 5.0, handler1, false)

		handleEvt2 := handler2.EXPECT().Handle(evt2).Do(func(e Event) {
			engine.Schedule(evt3)
			engine.Schedule(evt4)
		})
		handleEvt3 := handler1.EXPECT().Handle(evt3).After(handleEvt2)
		handleEvt1 := handler1.EXPECT().Handle(evt1).After(handleEvt3)
		handler1.EXPECT().Handle(evt4).After(handleEvt1)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.Now()).To(Equal(VTimeInSec(5.0)))
	})

	It("should consider secondary events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		handler3 := NewMockHandler(mockCtrl)
		evt1 := mockEvent(mockCtrl, 2.0, handler1, true)
		evt2 := mockEvent(mockCtrl, 2.0, handler2, false)
		evt3 := mockEvent(mockCtrl, 2.0, handler3, false)

		handleEvt2 := handler2.EXPECT().Handle(evt2)
		handleEvt3 := handler3.EXPECT().Handle(evt3)
		handler1.EXPECT().Handle(evt1).After(handleEvt2).After(handleEvt3)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		Expect(engine.Run()).To(Succeed())
	})

	It("should dispatch same-time events in scheduling order", func() {
		handler := NewMockHandler(mockCtrl)
		var calls []*gomock.Call
		for i := 0; i < 5; i++ {
			evt := mockEvent(mockCtrl, 1.0, handler, true)
			call := handler.EXPECT().Handle(evt)
			if len(calls) > 0 {
				call.After(calls[len(calls)-1])
			}
			calls = append(calls, call)
			engine.Schedule(evt)
		}

		Expect(engine.Run()).To(Succeed())
	})

	It("should panic when scheduling an event in the past", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(mockCtrl, 2.0, handler, false)
		evt2 := mockEvent(mockCtrl, 1.0, handler, false)

		handler.EXPECT().Handle(evt1)
		engine.Schedule(evt1)
		Expect(engine.Run()).To(Succeed())

		Expect(func() { engine.Schedule(evt2) }).To(Panic())
	})

	Context("caller identity", func() {
		It("should issue distinct ids to handlers", func() {
			handler1 := NewMockHandler(mockCtrl)
			handler2 := NewMockHandler(mockCtrl)

			id1 := engine.RegisterHandler(handler1)
			id2 := engine.RegisterHandler(handler2)

			Expect(id1).NotTo(Equal(NoCaller))
			Expect(id2).NotTo(Equal(id1))
			Expect(engine.RegisterHandler(handler1)).To(Equal(id1))
		})

		It("should report the current caller while dispatching", func() {
			handler1 := NewMockHandler(mockCtrl)
			handler2 := NewMockHandler(mockCtrl)
			id1 := engine.RegisterHandler(handler1)

			var seen1, seen2 CallerID
			evt1 := mockEvent(mockCtrl, 1.0, handler1, false)
			evt2 := mockEvent(mockCtrl, 2.0, handler2, false)
			handler1.EXPECT().Handle(evt1).Do(func(Event) {
				seen1 = engine.CurrentCaller()
			})
			handler2.EXPECT().Handle(evt2).Do(func(Event) {
				seen2 = engine.CurrentCaller()
			})

			engine.Schedule(evt1)
			engine.Schedule(evt2)
			Expect(engine.Run()).To(Succeed())

			Expect(seen1).To(Equal(id1))
			Expect(seen2).NotTo(Equal(NoCaller))
			Expect(seen2).NotTo(Equal(id1))
			Expect(engine.CurrentCaller()).To(Equal(NoCaller))
		})
	})

	Context("activity queries", func() {
		It("should report no activity when empty", func() {
			Expect(engine.HasPendingActivity()).To(BeFalse())
			Expect(engine.HasPendingActivityAtCurrentTime()).To(BeFalse())
			Expect(engine.TimeToPendingActivity()).To(Equal(Infinity))
		})

		It("should report future activity", func() {
			handler := NewMockHandler(mockCtrl)
			engine.Schedule(mockEvent(mockCtrl, 2.5, handler, true))

			Expect(engine.HasPendingActivity()).To(BeTrue())
			Expect(engine.HasPendingActivityAtCurrentTime()).To(BeFalse())
			Expect(engine.TimeToPendingActivity()).To(Equal(VTimeInSec(2.5)))
		})

		It("should report activity at the current time", func() {
			handler := NewMockHandler(mockCtrl)
			engine.Schedule(mockEvent(mockCtrl, 3.0, handler, false))
			engine.Schedule(mockEvent(mockCtrl, 0, handler, false))

			Expect(engine.HasPendingActivityAtCurrentTime()).To(BeTrue())
			Expect(engine.TimeToPendingActivity()).To(Equal(VTimeInSec(0)))
		})

		It("should count async updates as current activity", func() {
			updater := NewMockAsyncUpdater(mockCtrl)
			engine.RequestAsyncUpdate(updater)

			Expect(engine.HasPendingActivity()).To(BeTrue())
			Expect(engine.HasPendingActivityAtCurrentTime()).To(BeTrue())
			Expect(engine.TimeToPendingActivity()).To(Equal(VTimeInSec(0)))
		})
	})

	Context("async updates", func() {
		It("should run updates requested from other goroutines", func() {
			updater := NewMockAsyncUpdater(mockCtrl)
			updater.EXPECT().Update().Times(4)

			var wg sync.WaitGroup
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					engine.RequestAsyncUpdate(updater)
				}()
			}
			wg.Wait()

			Expect(engine.Run()).To(Succeed())
			Expect(engine.HasPendingActivity()).To(BeFalse())
		})

		It("should let updates schedule events at the current time", func() {
			handler := NewMockHandler(mockCtrl)
			evt := mockEvent(mockCtrl, 0, handler, false)
			updater := NewMockAsyncUpdater(mockCtrl)

			updater.EXPECT().Update().Do(func() { engine.Schedule(evt) })
			handler.EXPECT().Handle(evt)

			engine.RequestAsyncUpdate(updater)
			Expect(engine.Run()).To(Succeed())
		})
	})

	Context("idle handlers", func() {
		It("should return when the idle handler does nothing", func() {
			idle := NewMockIdleHandler(mockCtrl)
			idle.EXPECT().Idle(VTimeInSec(0))
			engine.RegisterIdleHandler(idle)

			Expect(engine.Run()).To(Succeed())
		})

		It("should continue if the idle handler schedules events", func() {
			handler := NewMockHandler(mockCtrl)
			evt := mockEvent(mockCtrl, 1.0, handler, false)
			idle := NewMockIdleHandler(mockCtrl)
			engine.RegisterIdleHandler(idle)

			first := idle.EXPECT().Idle(VTimeInSec(0)).Do(func(VTimeInSec) {
				engine.Schedule(evt)
			})
			handle := handler.EXPECT().Handle(evt).After(first)
			idle.EXPECT().Idle(VTimeInSec(1.0)).After(handle)

			Expect(engine.Run()).To(Succeed())
		})

		It("should pause while an idle handler is blocking", func() {
			idle := newBlockingIdler()
			engine.RegisterIdleHandler(idle)

			done := make(chan error, 1)
			go func() { done <- engine.Run() }()
			Eventually(idle.entered).Should(BeClosed())

			paused := make(chan struct{})
			go func() {
				engine.Pause()
				close(paused)
			}()

			Eventually(paused).Should(BeClosed())
			Expect(idle.interrupted).To(BeClosed())
			Consistently(done).ShouldNot(Receive())

			engine.Continue()

			Eventually(done).Should(Receive(BeNil()))
			Expect(engine.HasPendingActivity()).To(BeFalse())
		})
	})

	It("should pause and continue", func() {
		engine.Pause()
		engine.Pause()

		done := make(chan struct{})
		go func() {
			_ = engine.Run()
			close(done)
		}()

		Consistently(done).ShouldNot(BeClosed())

		engine.Continue()
		engine.Continue()

		Eventually(done).Should(BeClosed())
	})
})
