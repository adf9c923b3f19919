package websocket_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/google/uuid"

	ws "github.com/apprenticeapex/backend/websocket"
)

var _ = Describe("Client", func() {
	var client *ws.Client

	BeforeEach(func() {
		client = ws.NewClient(uuid.New(), "candidate", nil)
	})

	It("queues emitted frames until the pump drains them", func() {
		client.Emit("notification", map[string]string{"title": "hi"})
		Expect(receive(client).Event).To(Equal("notification"))
	})

	It("drops frames emitted after close instead of panicking", func() {
		client.Close()
		Expect(func() {
			client.Emit("notification", map[string]string{"title": "late"})
		}).NotTo(Panic())
		Expect(client.Send).To(BeClosed())
	})

	It("tolerates a second close", func() {
		client.Close()
		Expect(client.Close).NotTo(Panic())
	})

	It("survives emits racing the close", func() {
		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			defer close(done)
			for i := 0; i < 1000; i++ {
				client.Emit("new_message", map[string]string{"content": "x"})
			}
		}()
		client.Close()
		Eventually(done).Should(BeClosed())
	})
})
