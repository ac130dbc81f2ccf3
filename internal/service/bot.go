package service

import (
	"regexp"
	"strings"

	"github.com/gcmaps/gcm-server-go/internal/model"
)

const (
	botStrongMatchThreshold  = 3
	botPartialMatchThreshold = 1
)

// Billing problems always go to a human, whatever the FAQ says.
var billingPattern = regexp.MustCompile(`(?i)\b(billing|payment|refund|charge[ds]?|invoice)\b`)

// BotReply is the first-line answer for a new ticket. AutoEscalate
// routes the ticket to the agent queue immediately; SuggestEscalation
// keeps the bot answer but tells the customer a human is available.
type BotReply struct {
	FaqID             int64
	Answer            string
	Strong            bool
	SuggestEscalation bool
	AutoEscalate      bool
}

// matchFaq picks the FAQ entry with the most keyword hits in the
// message. Three or more hits is a confident answer; a single hit
// answers but suggests escalation; no hits escalates outright.
func matchFaq(message string, entries []model.FaqEntry) BotReply {
	lower := strings.ToLower(message)

	var best *model.FaqEntry
	bestHits := 0
	for i := range entries {
		hits := 0
		for _, kw := range strings.Split(entries[i].Keywords, ",") {
			kw = strings.TrimSpace(strings.ToLower(kw))
			if kw != "" && strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = &entries[i]
			bestHits = hits
		}
	}

	var reply BotReply
	if best != nil && bestHits >= botPartialMatchThreshold {
		reply.FaqID = best.ID
		reply.Answer = best.Answer
		reply.Strong = bestHits >= botStrongMatchThreshold
		reply.SuggestEscalation = !reply.Strong
	} else {
		reply.AutoEscalate = true
	}

	if billingPattern.MatchString(message) {
		reply.AutoEscalate = true
	}
	return reply
}
