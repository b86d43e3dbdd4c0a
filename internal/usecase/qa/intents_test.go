package qa

import (
	"strings"
	"testing"
)

func TestConversational(t *testing.T) {
	tests := []struct {
		question  string
		wantOK    bool
		contains  string
		followUps int
	}{
		{"hi", true, "**3 policy documents**", 3},
		{"Good morning!", true, "Policy Q&A Assistant", 3},
		{"hey, there", false, "", 0},
		{"hey there", true, "Hello!", 3},
		{"Who are you?", true, "clause-level citations", 3},
		{"thank you.", true, "You're welcome!", 0},
		{"HELP", true, "Here's how to get the best results", 3},
		{"hiking accidents covered?", false, "", 0},
		{"Is flood covered?", false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got, ok := conversational(tt.question, 3)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !strings.Contains(got.Answer, tt.contains) {
				t.Errorf("answer %q missing %q", got.Answer, tt.contains)
			}
			if len(got.FollowUps) != tt.followUps {
				t.Errorf("follow-ups = %d, want %d", len(got.FollowUps), tt.followUps)
			}
			if got.Question != tt.question || got.Confidence != 1.0 || got.Sources == nil {
				t.Errorf("unexpected payload: %+v", got)
			}
		})
	}
}

func TestGreetingText_SingleDocument(t *testing.T) {
	if !strings.Contains(greetingText(1), "**1 policy document**") {
		t.Errorf("unexpected greeting: %q", greetingText(1))
	}
}
