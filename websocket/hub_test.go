package websocket_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/google/uuid"

	ws "github.com/apprenticeapex/backend/websocket"
)

func receive(c *ws.Client) ws.Envelope {
	var envelope ws.Envelope
	select {
	case frame, ok := <-c.Send:
		Expect(ok).To(BeTrue(), "send queue closed unexpectedly")
		Expect(json.Unmarshal(frame, &envelope)).To(Succeed())
	case <-time.After(time.Second):
		Fail("timed out waiting for a frame")
	}
	return envelope
}

func expectSilence(c *ws.Client) {
	select {
	case frame := <-c.Send:
		Fail("unexpected frame: " + string(frame))
	case <-time.After(50 * time.Millisecond):
	}
}

var _ = Describe("Hub", func() {
	var (
		hub *ws.Hub

		aliceID uuid.UUID
		bobID   uuid.UUID

		alice *ws.Client
		bob   *ws.Client
	)

	BeforeEach(func() {
		hub = ws.NewHub()
		go hub.Run()

		aliceID = uuid.New()
		bobID = uuid.New()
		alice = ws.NewClient(aliceID, "candidate", nil)
		bob = ws.NewClient(bobID, "employer", nil)

		hub.RegisterClient(alice)
		hub.RegisterClient(bob)
		Eventually(func() bool { return hub.UserOnline(aliceID) }).Should(BeTrue())
		Eventually(func() bool { return hub.UserOnline(bobID) }).Should(BeTrue())
	})

	Describe("room membership", func() {
		It("tracks joins and leaves per conversation", func() {
			conversationID := uuid.New()

			Expect(hub.UserInRoom(conversationID, aliceID)).To(BeFalse())

			hub.JoinRoom(conversationID, alice)
			Expect(hub.UserInRoom(conversationID, aliceID)).To(BeTrue())
			Expect(hub.UserInRoom(conversationID, bobID)).To(BeFalse())
			Expect(hub.RoomsOf(alice)).To(ConsistOf([]uuid.UUID{conversationID}))

			hub.LeaveRoom(conversationID, alice)
			Expect(hub.UserInRoom(conversationID, aliceID)).To(BeFalse())
			Expect(hub.RoomsOf(alice)).To(BeEmpty())
		})

		It("treats a user as in the room while any of their connections is joined", func() {
			conversationID := uuid.New()
			secondTab := ws.NewClient(aliceID, "candidate", nil)
			hub.RegisterClient(secondTab)
			Eventually(func() int { return hub.Connections(aliceID) }).Should(Equal(2))

			hub.JoinRoom(conversationID, alice)
			hub.JoinRoom(conversationID, secondTab)

			hub.LeaveRoom(conversationID, alice)
			Expect(hub.UserInRoom(conversationID, aliceID)).To(BeTrue())

			hub.LeaveRoom(conversationID, secondTab)
			Expect(hub.UserInRoom(conversationID, aliceID)).To(BeFalse())
		})
	})

	Describe("EmitToRoom", func() {
		It("delivers to every member except the excluded client", func() {
			conversationID := uuid.New()
			hub.JoinRoom(conversationID, alice)
			hub.JoinRoom(conversationID, bob)

			hub.EmitToRoom(conversationID, "user_typing", map[string]string{"user_id": aliceID.String()}, alice)

			envelope := receive(bob)
			Expect(envelope.Event).To(Equal("user_typing"))

			var payload map[string]string
			Expect(json.Unmarshal(envelope.Data, &payload)).To(Succeed())
			Expect(payload["user_id"]).To(Equal(aliceID.String()))

			expectSilence(alice)
		})

		It("delivers to all members when nothing is excluded", func() {
			conversationID := uuid.New()
			hub.JoinRoom(conversationID, alice)
			hub.JoinRoom(conversationID, bob)

			hub.EmitToRoom(conversationID, "new_message", map[string]string{"content": "hello"}, nil)

			Expect(receive(alice).Event).To(Equal("new_message"))
			Expect(receive(bob).Event).To(Equal("new_message"))
		})

		It("does not reach clients that never joined", func() {
			conversationID := uuid.New()
			hub.JoinRoom(conversationID, alice)

			hub.EmitToRoom(conversationID, "new_message", map[string]string{"content": "hi"}, nil)

			Expect(receive(alice).Event).To(Equal("new_message"))
			expectSilence(bob)
		})
	})

	Describe("EmitToUser", func() {
		It("reaches every connection the user holds", func() {
			secondTab := ws.NewClient(bobID, "employer", nil)
			hub.RegisterClient(secondTab)
			Eventually(func() int { return hub.Connections(bobID) }).Should(Equal(2))

			hub.EmitToUser(bobID, "notification", map[string]string{"title": "New applicant"})

			Expect(receive(bob).Event).To(Equal("notification"))
			Expect(receive(secondTab).Event).To(Equal("notification"))
			expectSilence(alice)
		})
	})

	Describe("UnregisterClient", func() {
		It("drops the client from its rooms and closes its send queue", func() {
			conversationID := uuid.New()
			hub.JoinRoom(conversationID, alice)

			hub.UnregisterClient(alice)
			Eventually(func() bool { return hub.UserOnline(aliceID) }).Should(BeFalse())
			Expect(hub.UserInRoom(conversationID, aliceID)).To(BeFalse())

			Eventually(alice.Send).Should(BeClosed())
		})

		It("keeps the user online while another connection remains", func() {
			secondTab := ws.NewClient(aliceID, "candidate", nil)
			hub.RegisterClient(secondTab)
			Eventually(func() int { return hub.Connections(aliceID) }).Should(Equal(2))

			hub.UnregisterClient(secondTab)
			Eventually(secondTab.Send).Should(BeClosed())
			Expect(hub.UserOnline(aliceID)).To(BeTrue())
		})
	})
})
