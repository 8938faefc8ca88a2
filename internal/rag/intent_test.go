package rag

import "testing"

func TestClassifyContextWins(t *testing.T) {
	// Even a location-flavored question is property specific once context
	// was retrieved for it.
	got := Classify("are there restaurants in the building?", true)
	if got != IntentPropertySpecific {
		t.Errorf("Classify with context = %v, want property_specific", got)
	}
}

func TestClassifyLocationWords(t *testing.T) {
	cases := []string{
		"any good restaurants nearby?",
		"how do I get a taxi to the airport",
		"what is there to see around here",
		"best beach in the area?",
	}
	for _, q := range cases {
		if got := Classify(q, false); got != IntentLocationGeneral {
			t.Errorf("Classify(%q) = %v, want location_general", q, got)
		}
	}
}

func TestClassifyOtherGeneral(t *testing.T) {
	cases := []string{
		"tell me a joke",
		"what is the capital of France",
		"can you help me write an email",
	}
	for _, q := range cases {
		if got := Classify(q, false); got != IntentOtherGeneral {
			t.Errorf("Classify(%q) = %v, want other_general", q, got)
		}
	}
}

func TestClassifyWholeWordMatching(t *testing.T) {
	// "doors" contains "do" but must not trip the location keyword list.
	if got := Classify("the doors squeak", false); got != IntentOtherGeneral {
		t.Errorf("substring matched inside a word: %v", got)
	}
}
