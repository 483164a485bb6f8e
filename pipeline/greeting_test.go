package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGreet_FirstTableMatchWins(t *testing.T) {
	// "hello, how are you?" matches both "hello" and "how are you";
	// table order picks "hello".
	assert.Equal(t, "Hello there! 👋 How can I help you today?", Greet("hello, how are you?"))
}

func TestGreet_CaseInsensitive(t *testing.T) {
	assert.Equal(t, "Hey! 👋 How are you doing?", Greet("HEY you"))
}

func TestGreet_PhraseKeywords(t *testing.T) {
	assert.Equal(t, "Good evening! 🌙 What brings you here today?", Greet("good evening bot"))
	assert.Equal(t, "Not much, just waiting to chat with you! 🤖", Greet("what's up"))
}

func TestGreet_FallbackWhenNoMatch(t *testing.T) {
	assert.Equal(t, genericGreeting, Greet("completely unrelated text"))
}
