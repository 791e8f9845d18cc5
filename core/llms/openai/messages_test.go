package openai

import (
	"testing"

	"github.com/voxflow/voxflow-core/core/llms"
)

func TestToMessages(t *testing.T) {
	history := []llms.Turn{
		{Role: llms.RoleUser, Content: "Is the store open?"},
		{Role: llms.RoleAssistant, Content: "Yes, until nine."},
	}
	messages := toMessages("You are a phone assistant.", history, "And on Sundays?")

	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	if messages[0].Role != messageRoleSystem || messages[0].Content != "You are a phone assistant." {
		t.Fatalf("system message out of place: %+v", messages[0])
	}
	if messages[1].Role != messageRoleUser || messages[2].Role != messageRoleAssistant {
		t.Fatalf("history out of order: %+v", messages[1:3])
	}
	if messages[3].Role != messageRoleUser || messages[3].Content != "And on Sundays?" {
		t.Fatalf("prompt must come last: %+v", messages[3])
	}
}

func TestToMessagesNoInstructions(t *testing.T) {
	messages := toMessages("", nil, "hello")
	if len(messages) != 1 || messages[0].Role != messageRoleUser {
		t.Fatalf("unexpected messages: %+v", messages)
	}
}
