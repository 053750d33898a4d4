package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembleEmpty(t *testing.T) {
	assert.Equal(t, "", Assemble(nil))
	assert.Equal(t, "", Assemble(map[string]string{}))
}

func TestAssembleLabels(t *testing.T) {
	got := Assemble(map[string]string{
		"user_likes":           "dogs",
		"fact_to_buy_abcd1234": "to buy milk",
		"aryan":                "likes cool kids",
		"my bday":              "june 5",
		"bob_s_dog":            "is named rex",
	})
	want := "Relevant Memory:\n" +
		"- aryan likes cool kids\n" +
		"- bob dog is named rex\n" +
		"- to buy milk\n" +
		"- my bday: june 5\n" +
		"- User likes: dogs\n" +
		"\n"
	assert.Equal(t, want, got)
}

func TestLabelFallsBackWhenSubjectEmpty(t *testing.T) {
	assert.Equal(t, "_s: likes x", Label("_s", "likes x"))
}

func TestRelevantScan(t *testing.T) {
	all := map[string]string{
		"user_likes": "dogs and cats",
		"aryan":      "likes dogs",
		"my bday":    "june 5",
		"bob_s_car":  "is red",
		"unrelated":  "nothing here",
	}

	assert.Equal(t, map[string]string{
		"user_likes": "dogs and cats",
		"aryan":      "likes dogs",
	}, Relevant(all, "dogs"))

	assert.Equal(t, map[string]string{"my bday": "june 5"}, Relevant(all, "bday"))
	assert.Equal(t, map[string]string{"bob_s_car": "is red"}, Relevant(all, "Bob"))
	assert.Empty(t, Relevant(all, "   "))
}

func TestEntityContextIncludesLikes(t *testing.T) {
	block := Assemble(Relevant(map[string]string{"user_likes": "dogs"}, "dogs"))
	assert.Contains(t, block, "- User likes: dogs")
}

func TestListing(t *testing.T) {
	assert.Equal(t, "- a: 1\n- b: 2\n", Listing(map[string]string{"b": "2", "a": "1"}))
	assert.Equal(t, "", Listing(nil))
}
