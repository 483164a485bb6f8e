package pipeline

import "strings"

type greetingEntry struct {
	keyword  string
	response string
}

// greetingTable maps small-talk keywords to canned responses. Order
// matters: the first keyword found in the question wins, so longer or
// more specific phrases must not rely on position after their prefixes.
var greetingTable = []greetingEntry{
	{"hello", "Hello there! 👋 How can I help you today?"},
	{"hi", "Hi! 😊 What would you like to know?"},
	{"hey", "Hey! 👋 How are you doing?"},
	{"good morning", "Good morning! ☀️ Hope your day is going well!"},
	{"good afternoon", "Good afternoon! 🌞 How can I assist you?"},
	{"good evening", "Good evening! 🌙 What brings you here today?"},
	{"how are you", "I'm just a bunch of algorithms, but I'm feeling great! 😄 How about you?"},
	{"what's up", "Not much, just waiting to chat with you! 🤖"},
}

const genericGreeting = "Hey there! 😊 How can I help you today?"

// Greet returns the canned response for the first greeting keyword
// found in the question. The generic fallback covers the case where the
// caller routed here without an actual match.
func Greet(question string) string {
	q := strings.ToLower(question)
	for _, entry := range greetingTable {
		if strings.Contains(q, entry.keyword) {
			return entry.response
		}
	}
	return genericGreeting
}
