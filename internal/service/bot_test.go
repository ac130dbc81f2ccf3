package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gcmaps/gcm-server-go/internal/model"
)

func faqFixture() []model.FaqEntry {
	return []model.FaqEntry{
		{ID: 1, Question: "How do I download a map?", Answer: "Open the city page and press download.",
			Keywords: "download, map, offline, save"},
		{ID: 2, Question: "How do subscriptions work?", Answer: "Subscriptions renew monthly.",
			Keywords: "subscription, renew, monthly, expire"},
		{ID: 3, Question: "Resetting your password", Answer: "Use the reset link.",
			Keywords: "password, reset, login"},
	}
}

func TestMatchFaq(t *testing.T) {
	entries := faqFixture()

	t.Run("three keyword hits is a confident answer", func(t *testing.T) {
		reply := matchFaq("I want to download a map for offline use", entries)

		assert.Equal(t, int64(1), reply.FaqID)
		assert.Equal(t, "Open the city page and press download.", reply.Answer)
		assert.True(t, reply.Strong)
		assert.False(t, reply.SuggestEscalation)
		assert.False(t, reply.AutoEscalate)
	})

	t.Run("single hit answers but suggests a human", func(t *testing.T) {
		reply := matchFaq("my subscription looks wrong", entries)

		assert.Equal(t, int64(2), reply.FaqID)
		assert.False(t, reply.Strong)
		assert.True(t, reply.SuggestEscalation)
		assert.False(t, reply.AutoEscalate)
	})

	t.Run("no hits escalates outright", func(t *testing.T) {
		reply := matchFaq("the app crashes on startup", entries)

		assert.Empty(t, reply.Answer)
		assert.True(t, reply.AutoEscalate)
	})

	t.Run("billing vocabulary always escalates", func(t *testing.T) {
		reply := matchFaq("I was charged twice for my subscription renew this monthly cycle", entries)

		// Strong FAQ match, but money questions go to a human.
		assert.Equal(t, int64(2), reply.FaqID)
		assert.True(t, reply.Strong)
		assert.True(t, reply.AutoEscalate)
	})

	t.Run("keyword matching is case insensitive", func(t *testing.T) {
		reply := matchFaq("PASSWORD RESET please, cannot LOGIN", entries)

		assert.Equal(t, int64(3), reply.FaqID)
		assert.True(t, reply.Strong)
	})

	t.Run("best entry wins on hit count", func(t *testing.T) {
		reply := matchFaq("download the map to save offline before my subscription expires", entries)

		// Entry 1 has four hits, entry 2 only two.
		assert.Equal(t, int64(1), reply.FaqID)
	})

	t.Run("empty FAQ table escalates", func(t *testing.T) {
		reply := matchFaq("anything at all", nil)
		assert.True(t, reply.AutoEscalate)
	})
}
