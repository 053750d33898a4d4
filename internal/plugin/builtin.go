package plugin

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/rcliao/ryan/internal/llm"
)

func containsAny(s string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// CoinFlip answers "flip a coin".
type CoinFlip struct {
	Rand func() int // returns 0 or 1; nil uses math/rand
}

func (CoinFlip) Name() string { return "coin_flip" }

func (c CoinFlip) Handle(_ context.Context, input string) (string, bool, error) {
	if !containsAny(strings.ToLower(input), "flip a coin", "coin flip") {
		return "", false, nil
	}
	n := rand.Intn(2)
	if c.Rand != nil {
		n = c.Rand()
	}
	side := "Heads"
	if n == 1 {
		side = "Tails"
	}
	return "Okay, I'll flip a coin... It landed on **" + side + "**!", true, nil
}

// Clock answers time and date questions.
type Clock struct {
	Now func() time.Time // nil uses time.Now
}

func (Clock) Name() string { return "time" }

func (c Clock) Handle(_ context.Context, input string) (string, bool, error) {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	lower := strings.ToLower(input)
	switch {
	case containsAny(lower, "what time is it", "current time"):
		return "The current time is " + now.Format("03:04 PM") + ".", true, nil
	case containsAny(lower, "what is the date", "current date"):
		return "Today's date is " + now.Format("Monday, January 02, 2006") + ".", true, nil
	}
	return "", false, nil
}

// Joke asks the model for a short joke.
type Joke struct {
	LLM llm.Completer
}

var jokePhrases = []string{
	"tell me a joke", "make me laugh", "got any jokes", "say something funny", "joke please",
}

func (Joke) Name() string { return "joke" }

func (j Joke) Handle(ctx context.Context, input string) (string, bool, error) {
	if !containsAny(strings.ToLower(input), jokePhrases...) {
		return "", false, nil
	}
	if j.LLM == nil {
		return "Hmm, I can't think of a joke right now. My humor circuits might be offline!", true, nil
	}
	text, err := j.LLM.Complete(ctx, "Tell me a short, funny joke.")
	if err != nil {
		return "Oops, something went wrong while trying to come up with a joke.", true, nil
	}
	if strings.TrimSpace(text) == "" {
		return "Hmm, I can't think of a joke right now. My humor circuits might be offline!", true, nil
	}
	return strings.TrimSpace(text), true, nil
}
