package httpapi

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Canned small-talk replies.
var (
	greetingWords = []string{"hello", "hi", "hey"}
	feelingWords  = []string{"how are you", "how do you feel"}
	goodbyeWords  = []string{"bye", "goodbye", "see you"}

	greetingReplies = []string{"Hey there 👋", "Hello!", "Hi, how's it going?"}
	feelingReplies  = []string{"I'm doing great, thanks!", "Feeling awesome 🤖"}
	goodbyeReplies  = []string{"Goodbye! 👋", "See you soon!", "Take care!"}

	fallbackReply = "I'm still learning, can you rephrase that?"
)

// smallTalk produces a canned reply when the knowledge base has
// nothing to say. The input is already lowercased by the chat
// handler.
func (s *Server) smallTalk(text string) string {
	switch {
	case containsAny(text, greetingWords):
		return pick(greetingReplies)
	case containsAny(text, feelingWords):
		return pick(feelingReplies)
	case containsAny(text, goodbyeWords):
		return pick(goodbyeReplies)
	case strings.Contains(text, "time"):
		return fmt.Sprintf("The current time is %s", s.now().Format("15:04:05"))
	default:
		return fallbackReply
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func pick(replies []string) string {
	return replies[rand.IntN(len(replies))]
}
