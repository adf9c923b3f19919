package handlers_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/google/uuid"

	"github.com/apprenticeapex/backend/handlers"
	"github.com/apprenticeapex/backend/models"
	"github.com/apprenticeapex/backend/services"
	ws "github.com/apprenticeapex/backend/websocket"
)

func nextFrame(c *ws.Client) ws.Envelope {
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

func noFrame(c *ws.Client) {
	select {
	case frame := <-c.Send:
		Fail("unexpected frame: " + string(frame))
	case <-time.After(50 * time.Millisecond):
	}
}

func envelopeFor(event string, payload interface{}) ws.Envelope {
	data, err := json.Marshal(payload)
	Expect(err).NotTo(HaveOccurred())
	return ws.Envelope{Event: event, Data: data}
}

var _ = Describe("Messenger", func() {
	var (
		hub       *ws.Hub
		service   *services.ChatService
		messenger *handlers.Messenger

		senderID   uuid.UUID
		receiverID uuid.UUID
		sender     *ws.Client
		receiver   *ws.Client

		conversation *models.Conversation
	)

	BeforeEach(func() {
		hub = ws.NewHub()
		go hub.Run()
		service = services.NewChatService(services.NewMemoryChatStore())
		messenger = handlers.NewMessenger(service, hub)

		senderID = uuid.New()
		receiverID = uuid.New()
		sender = ws.NewClient(senderID, "employer", nil)
		receiver = ws.NewClient(receiverID, "candidate", nil)

		hub.RegisterClient(sender)
		hub.RegisterClient(receiver)
		Eventually(func() bool { return hub.UserOnline(senderID) }).Should(BeTrue())
		Eventually(func() bool { return hub.UserOnline(receiverID) }).Should(BeTrue())

		var err error
		conversation, _, err = service.CreateConversation(senderID, receiverID, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		hub.JoinRoom(conversation.ID, sender)
	})

	Describe("send_message", func() {
		sendHello := func() {
			messenger.Dispatch(sender, envelopeFor("send_message", map[string]string{
				"conversation_id": conversation.ID.String(),
				"content":         "hello",
			}))
		}

		Context("when the receiver is viewing the conversation", func() {
			BeforeEach(func() {
				hub.JoinRoom(conversation.ID, receiver)
			})

			It("broadcasts into the room and acks the sender, with no side channel", func() {
				sendHello()

				envelope := nextFrame(receiver)
				Expect(envelope.Event).To(Equal("new_message"))
				var message models.Message
				Expect(json.Unmarshal(envelope.Data, &message)).To(Succeed())
				Expect(message.Content).To(Equal("hello"))
				Expect(message.SenderID).To(Equal(senderID))
				noFrame(receiver)

				Expect(nextFrame(sender).Event).To(Equal("new_message"))
				Expect(nextFrame(sender).Event).To(Equal("message_sent"))
			})
		})

		Context("when the receiver is connected but not viewing the conversation", func() {
			It("notifies the receiver on their personal room instead", func() {
				sendHello()

				envelope := nextFrame(receiver)
				Expect(envelope.Event).To(Equal("message_notification"))
				var payload map[string]interface{}
				Expect(json.Unmarshal(envelope.Data, &payload)).To(Succeed())
				Expect(payload["content"]).To(Equal("hello"))
				Expect(payload["sender_id"]).To(Equal(senderID.String()))
				noFrame(receiver)

				Expect(nextFrame(sender).Event).To(Equal("new_message"))
				Expect(nextFrame(sender).Event).To(Equal("message_sent"))
			})
		})

		It("rejects a sender outside the conversation with an error event", func() {
			strangerID := uuid.New()
			stranger := ws.NewClient(strangerID, "candidate", nil)
			hub.RegisterClient(stranger)
			Eventually(func() bool { return hub.UserOnline(strangerID) }).Should(BeTrue())

			messenger.Dispatch(stranger, envelopeFor("send_message", map[string]string{
				"conversation_id": conversation.ID.String(),
				"content":         "intruding",
			}))

			envelope := nextFrame(stranger)
			Expect(envelope.Event).To(Equal("error"))
			var payload ws.ErrorPayload
			Expect(json.Unmarshal(envelope.Data, &payload)).To(Succeed())
			Expect(payload.Message).To(ContainSubstring("not a participant"))
			noFrame(sender)
		})
	})

	Describe("typing", func() {
		It("relays to the room without self-delivery", func() {
			hub.JoinRoom(conversation.ID, receiver)

			messenger.Dispatch(sender, envelopeFor("typing_start", map[string]string{
				"conversation_id": conversation.ID.String(),
			}))

			envelope := nextFrame(receiver)
			Expect(envelope.Event).To(Equal("user_typing"))
			noFrame(sender)
		})
	})

	Describe("unknown events", func() {
		It("answers with an error event and keeps the connection usable", func() {
			messenger.Dispatch(sender, ws.Envelope{Event: "no_such_event"})
			Expect(nextFrame(sender).Event).To(Equal("error"))

			messenger.Dispatch(sender, envelopeFor("get_conversations", nil))
			Expect(nextFrame(sender).Event).To(Equal("conversations_loaded"))
		})
	})
})
