package agent

import (
	"fmt"
	"slices"
	"strings"
)

const (
	emptyMessageReply = "Tell me something and I’ll try to help."
	saveFailedReply   = "Sorry, I couldn't save that right now."
)

func ackText(key, value string) string {
	return fmt.Sprintf("I’ll remember your %s is %s.", key, value)
}

func foundText(key, value string) string {
	return fmt.Sprintf("You told me your %s is %s.", key, value)
}

func notFoundText(key string) string {
	return fmt.Sprintf("I don’t have your %s yet. You can say: “remember my %s is …”.", key, key)
}

func fallbackText(message string) string {
	return "Got it. " + message
}

// BuildPrompt renders the generator prompt: an optional fact line with keys
// in sorted order, then the user's message.
func BuildPrompt(facts map[string]string, message string) string {
	var b strings.Builder
	if len(facts) > 0 {
		keys := make([]string, 0, len(facts))
		for k := range facts {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + facts[k]
		}
		fmt.Fprintf(&b, "(User facts: %s)\n", strings.Join(pairs, "; "))
	}
	fmt.Fprintf(&b, "User said: %s\nRespond helpfully and briefly.", message)
	return b.String()
}
