package timing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("EventQueueImpl", func() {
	var (
		mockCtrl *gomock.Controller
		queue    *EventQueueImpl
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		queue = NewEventQueue()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should return nil when empty", func() {
		Expect(queue.Len()).To(Equal(0))
		Expect(queue.Peek()).To(BeNil())
		Expect(queue.Pop()).To(BeNil())
	})

	It("should pop events in time order", func() {
		handler := NewMockHandler(mockCtrl)
		times := []VTimeInSec{3, 1, 4, 1.5, 9, 2.6}
		for _, t := range times {
			queue.Push(mockEvent(mockCtrl, t, handler, false))
		}

		Expect(queue.Peek().Time()).To(Equal(VTimeInSec(1)))

		last := VTimeInSec(0)
		for queue.Len() > 0 {
			evt := queue.Pop()
			Expect(evt.Time()).To(BeNumerically(">=", last))
			last = evt.Time()
		}
	})

	It("should keep insertion order for equal times", func() {
		handler := NewMockHandler(mockCtrl)
		evts := []Event{}
		for i := 0; i < 10; i++ {
			evt := mockEvent(mockCtrl, 7, handler, false)
			evts = append(evts, evt)
			queue.Push(evt)
		}

		for i := 0; i < 10; i++ {
			Expect(queue.Pop()).To(BeIdenticalTo(evts[i]))
		}
	})
})
