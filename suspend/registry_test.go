package suspend

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("ChannelRegistry", func() {
	var (
		mockCtrl *gomock.Controller
		registry *ChannelRegistry
		ch1, ch2 *MockChannel
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		registry = NewChannelRegistry()
		ch1 = NewMockChannel(mockCtrl)
		ch2 = NewMockChannel(mockCtrl)
		ch1.EXPECT().Name().Return("ch1").AnyTimes()
		ch2.EXPECT().Name().Return("ch2").AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start empty", func() {
		Expect(registry.HasAny()).To(BeFalse())
		Expect(registry.Len()).To(Equal(0))
		Expect(registry.Names()).To(BeEmpty())
	})

	It("should attach a channel only once", func() {
		Expect(registry.Attach(ch1)).To(BeTrue())
		Expect(registry.Attach(ch1)).To(BeFalse())

		Expect(registry.Len()).To(Equal(1))
		Expect(registry.HasAny()).To(BeTrue())
	})

	It("should compare channels by identity", func() {
		Expect(registry.Attach(ch1)).To(BeTrue())
		Expect(registry.Attach(ch2)).To(BeTrue())

		Expect(registry.Names()).To(ConsistOf("ch1", "ch2"))
	})

	It("should not change when detaching an unknown channel", func() {
		registry.Attach(ch1)

		Expect(registry.Detach(ch2)).To(BeFalse())
		Expect(registry.Len()).To(Equal(1))
		Expect(registry.HasAny()).To(BeTrue())
	})

	It("should clear the flag when the last channel is detached", func() {
		registry.Attach(ch1)
		registry.Attach(ch2)

		Expect(registry.Detach(ch1)).To(BeTrue())
		Expect(registry.HasAny()).To(BeTrue())
		Expect(registry.Names()).To(ConsistOf("ch2"))

		Expect(registry.Detach(ch2)).To(BeTrue())
		Expect(registry.HasAny()).To(BeFalse())
		Expect(registry.Len()).To(Equal(0))
	})

	It("should allow attaching again after detaching", func() {
		registry.Attach(ch1)
		registry.Detach(ch1)

		Expect(registry.Attach(ch1)).To(BeTrue())
		Expect(registry.HasAny()).To(BeTrue())
	})

	It("should panic on nil channels", func() {
		Expect(func() { registry.Attach(nil) }).To(Panic())
		Expect(func() { registry.Detach(nil) }).To(Panic())
	})
})
