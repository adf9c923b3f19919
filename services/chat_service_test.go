package services_test

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/google/uuid"

	"github.com/apprenticeapex/backend/models"
	"github.com/apprenticeapex/backend/services"
)

var _ = Describe("ChatService", func() {
	var (
		store   *services.MemoryChatStore
		service *services.ChatService

		alice uuid.UUID
		bob   uuid.UUID
		carol uuid.UUID

		conversation *models.Conversation
	)

	BeforeEach(func() {
		store = services.NewMemoryChatStore()
		service = services.NewChatService(store)

		alice = uuid.New()
		bob = uuid.New()
		carol = uuid.New()

		var err error
		conversation, _, err = service.CreateConversation(alice, bob, nil, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("SendMessage", func() {
		It("appends the message addressed to the other participant", func() {
			message, conv, err := service.SendMessage(alice, conversation.ID, "hello bob", "")
			Expect(err).NotTo(HaveOccurred())

			Expect(message.SenderID).To(Equal(alice))
			Expect(message.ReceiverID).To(Equal(bob))
			Expect(message.MessageType).To(Equal(models.MessageTypeText))
			Expect(conv.ID).To(Equal(conversation.ID))

			stored, err := store.MessageByID(message.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Content).To(Equal("hello bob"))
			Expect(stored.ReadAt).To(BeNil())
		})

		It("updates the conversation preview and timestamp", func() {
			_, _, err := service.SendMessage(bob, conversation.ID, "hi alice", "text")
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.Conversation(conversation.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.LastMessage).NotTo(BeNil())
			Expect(*updated.LastMessage).To(Equal("hi alice"))
			Expect(updated.LastMessageAt).NotTo(BeNil())
		})

		It("truncates long content in the preview but not in the message", func() {
			long := strings.Repeat("x", 300)
			message, _, err := service.SendMessage(alice, conversation.ID, long, "text")
			Expect(err).NotTo(HaveOccurred())
			Expect(message.Content).To(HaveLen(300))

			updated, err := service.Conversation(conversation.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*updated.LastMessage).To(HaveLen(255))
		})

		It("never splits a rune when truncating the preview", func() {
			long := strings.Repeat("é", 150) // 300 bytes of two-byte runes
			_, _, err := service.SendMessage(alice, conversation.ID, long, "text")
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.Conversation(conversation.ID)
			Expect(err).NotTo(HaveOccurred())
			preview := *updated.LastMessage
			Expect(utf8.ValidString(preview)).To(BeTrue())
			Expect(len(preview)).To(Equal(254))
		})

		It("rejects a sender who is not a participant and stores nothing", func() {
			_, _, err := service.SendMessage(carol, conversation.ID, "let me in", "text")
			Expect(err).To(MatchError(services.ErrNotParticipant))

			messages, _, err := service.Messages(conversation.ID, 1, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(BeEmpty())
		})

		It("fails for an unknown conversation", func() {
			_, _, err := service.SendMessage(alice, uuid.New(), "hello?", "text")
			Expect(err).To(MatchError(services.ErrConversationNotFound))
		})
	})

	Describe("CreateConversation", func() {
		It("reuses the existing conversation for the same pair", func() {
			again, created, err := service.CreateConversation(alice, bob, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(again.ID).To(Equal(conversation.ID))
		})

		It("matches the pair regardless of participant order", func() {
			again, created, err := service.CreateConversation(bob, alice, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(again.ID).To(Equal(conversation.ID))
		})

		It("creates a new conversation for a new pair", func() {
			jobTitle := "Plumbing Apprentice"
			conv, created, err := service.CreateConversation(alice, carol, nil, &jobTitle)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(conv.ID).NotTo(Equal(conversation.ID))
			Expect(conv.JobTitle).To(HaveValue(Equal("Plumbing Apprentice")))
			Expect(conv.IsActive).To(BeTrue())
		})
	})

	Describe("MarkMessagesRead", func() {
		var toBob, toAlice *models.Message

		BeforeEach(func() {
			var err error
			toBob, _, err = service.SendMessage(alice, conversation.ID, "for bob", "text")
			Expect(err).NotTo(HaveOccurred())
			toAlice, _, err = service.SendMessage(bob, conversation.ID, "for alice", "text")
			Expect(err).NotTo(HaveOccurred())
		})

		It("marks unread messages addressed to the caller and reports the sender", func() {
			receipts := service.MarkMessagesRead(bob, conversation.ID, []uuid.UUID{toBob.ID})
			Expect(receipts).To(HaveLen(1))
			Expect(receipts[0].MessageID).To(Equal(toBob.ID))
			Expect(receipts[0].SenderID).To(Equal(alice))

			stored, err := store.MessageByID(toBob.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ReadAt).NotTo(BeNil())
		})

		It("produces no receipts when marking the same messages twice", func() {
			Expect(service.MarkMessagesRead(bob, conversation.ID, []uuid.UUID{toBob.ID})).To(HaveLen(1))
			Expect(service.MarkMessagesRead(bob, conversation.ID, []uuid.UUID{toBob.ID})).To(BeEmpty())
		})

		It("skips messages the caller sent", func() {
			receipts := service.MarkMessagesRead(bob, conversation.ID, []uuid.UUID{toAlice.ID})
			Expect(receipts).To(BeEmpty())

			stored, err := store.MessageByID(toAlice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ReadAt).To(BeNil())
		})

		It("skips messages from another conversation and unknown ids", func() {
			other, _, err := service.CreateConversation(bob, carol, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			stray, _, err := service.SendMessage(carol, other.ID, "elsewhere", "text")
			Expect(err).NotTo(HaveOccurred())

			receipts := service.MarkMessagesRead(bob, conversation.ID, []uuid.UUID{stray.ID, uuid.New(), toBob.ID})
			Expect(receipts).To(HaveLen(1))
			Expect(receipts[0].MessageID).To(Equal(toBob.ID))
		})
	})

	Describe("Messages", func() {
		BeforeEach(func() {
			for _, content := range []string{"one", "two", "three", "four", "five"} {
				_, _, err := service.SendMessage(alice, conversation.ID, content, "text")
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("returns the newest page in oldest-first order", func() {
			page, hasMore, err := service.Messages(conversation.ID, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(hasMore).To(BeTrue())
			Expect(page).To(HaveLen(2))
			Expect(page[0].Content).To(Equal("four"))
			Expect(page[1].Content).To(Equal("five"))
		})

		It("walks back through history page by page", func() {
			page, hasMore, err := service.Messages(conversation.ID, 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(hasMore).To(BeTrue())
			Expect(page[0].Content).To(Equal("two"))
			Expect(page[1].Content).To(Equal("three"))

			page, hasMore, err = service.Messages(conversation.ID, 3, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(hasMore).To(BeFalse())
			Expect(page).To(HaveLen(1))
			Expect(page[0].Content).To(Equal("one"))
		})

		It("returns an empty page past the end of history", func() {
			page, hasMore, err := service.Messages(conversation.ID, 5, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(hasMore).To(BeFalse())
			Expect(page).To(BeEmpty())
		})

		It("falls back to the default limit for nonsense paging values", func() {
			page, hasMore, err := service.Messages(conversation.ID, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(hasMore).To(BeFalse())
			Expect(page).To(HaveLen(5))
			Expect(page[0].Content).To(Equal("one"))
			Expect(page[4].Content).To(Equal("five"))
		})
	})

	Describe("Conversations", func() {
		It("orders by most recent activity with untouched conversations last", func() {
			second, _, err := service.CreateConversation(alice, carol, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			_, _, err = service.SendMessage(alice, second.ID, "newest", "text")
			Expect(err).NotTo(HaveOccurred())

			conversations, err := service.Conversations(alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(conversations).To(HaveLen(2))
			Expect(conversations[0].ID).To(Equal(second.ID))
			Expect(conversations[1].ID).To(Equal(conversation.ID))
		})
	})
})
