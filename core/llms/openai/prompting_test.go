package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voxflow/voxflow-core/core/llms"
)

type inventoryQuery struct {
	Location string `json:"location" jsonschema:"title=location,description=Storage location to check"`
}

func completionJSON(content string, toolCalls ...map[string]any) string {
	msg := map[string]any{"role": "assistant", "content": content}
	if len(toolCalls) > 0 {
		msg["tool_calls"] = toolCalls
	}
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": msg, "finish_reason": "stop"}},
	})
	return string(body)
}

func TestPrompt(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(completionJSON("The fridge has milk.")))
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model", WithBaseURL(server.URL))
	response, err := client.Prompt(context.Background(), "What is in the fridge?")
	if err != nil {
		t.Fatalf("Prompt failed: %v", err)
	}
	if response.Content != "The fridge has milk." {
		t.Fatalf("unexpected content: %q", response.Content)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
}

func TestPromptToolRoundTrip(t *testing.T) {
	executions := 0
	inventoryTool := llms.NewTool("get_kitchen_inventory", "List items in a kitchen location",
		func(q inventoryQuery) (string, error) {
			executions++
			if q.Location != "fridge" {
				t.Fatalf("unexpected location: %q", q.Location)
			}
			return "milk, eggs", nil
		})

	requests := 0
	var secondRequest struct {
		Messages []message `json:"messages"`
		Tools    []tool    `json:"tools"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch requests {
		case 1:
			w.Write([]byte(completionJSON("", map[string]any{
				"id":   "call_1",
				"type": "function",
				"function": map[string]any{
					"name":      "get_kitchen_inventory",
					"arguments": `{"location":"fridge"}`,
				},
			})))
		case 2:
			if err := json.NewDecoder(r.Body).Decode(&secondRequest); err != nil {
				t.Errorf("decoding follow-up request: %v", err)
			}
			w.Write([]byte(completionJSON("You have milk and eggs.")))
		default:
			t.Errorf("unexpected extra request %d", requests)
		}
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model", WithBaseURL(server.URL))
	response, err := client.Prompt(context.Background(), "What is in the fridge?",
		llms.WithTools(inventoryTool),
	)
	if err != nil {
		t.Fatalf("Prompt failed: %v", err)
	}

	if executions != 1 {
		t.Fatalf("expected exactly one tool execution, got %d", executions)
	}
	if requests != 2 {
		t.Fatalf("expected exactly two requests, got %d", requests)
	}
	if response.Content != "You have milk and eggs." {
		t.Fatalf("unexpected content: %q", response.Content)
	}
	if len(response.ToolCalls) != 1 || response.ToolCalls[0].Response != "milk, eggs" {
		t.Fatalf("unexpected tool calls: %+v", response.ToolCalls)
	}

	toolResults := 0
	for _, msg := range secondRequest.Messages {
		if msg.Role == messageRoleTool {
			toolResults++
			if msg.ToolCallID != "call_1" {
				t.Fatalf("tool result references wrong call: %q", msg.ToolCallID)
			}
			if msg.Content != "milk, eggs" {
				t.Fatalf("unexpected tool result content: %q", msg.Content)
			}
		}
	}
	if toolResults != 1 {
		t.Fatalf("expected one tool result message, got %d", toolResults)
	}
	if len(secondRequest.Tools) != 0 {
		t.Fatalf("follow-up request should not offer tools again")
	}
}

func TestPromptToolFailureSubstituted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []message `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for _, msg := range req.Messages {
			if msg.Role == messageRoleTool {
				if !strings.Contains(msg.Content, "Unknown tool") {
					t.Errorf("expected substituted error content, got %q", msg.Content)
				}
				w.Write([]byte(completionJSON("Sorry, I could not check.")))
				return
			}
		}
		w.Write([]byte(completionJSON("", map[string]any{
			"id":   "call_1",
			"type": "function",
			"function": map[string]any{
				"name":      "nonexistent_tool",
				"arguments": `{}`,
			},
		})))
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model", WithBaseURL(server.URL))
	response, err := client.Prompt(context.Background(), "Check the pantry.")
	if err != nil {
		t.Fatalf("Prompt failed: %v", err)
	}
	if response.Content != "Sorry, I could not check." {
		t.Fatalf("unexpected content: %q", response.Content)
	}
}

func TestPromptNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model", WithBaseURL(server.URL))
	if _, err := client.Prompt(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on non-OK status")
	}
}
