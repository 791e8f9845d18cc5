package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/voxflow/voxflow-core/core/llms"
	"github.com/voxflow/voxflow-core/internal/utils"
)

const (
	chunkPrefix = "data:"
	endMessage  = "[DONE]"
)

type streamingResponseBody struct {
	Choices []struct {
		Delta struct {
			Content   string          `json:"content"`
			ToolCalls []toolCallDelta `json:"tool_calls,omitempty"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// toolCallDelta is a fragment of a streamed tool call. The id and name
// arrive on the first fragment for an index, arguments accumulate across
// subsequent fragments.
type toolCallDelta struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// PromptWithStream behaves like Prompt but delivers content deltas through
// the options' stream callback as they arrive. Tool calls are accumulated
// across deltas and resolved with the same single follow-up request, whose
// content is streamed through the same callback.
func (c *Client) PromptWithStream(ctx context.Context, prompt string, opts ...llms.PromptOption) (*llms.Response, error) {
	options := llms.PromptOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, span := tracer.Start(ctx, "backend prompt stream")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.model))

	messages := toMessages(options.Instructions, options.History, prompt)

	var toolChoice *string
	var tools []tool
	if len(options.Tools) > 0 {
		toolChoice = utils.Ptr("auto")
		tools = toTools(options.Tools)
	}

	result, err := c.completeStreaming(ctx, requestBody{
		Model:      c.model,
		Messages:   messages,
		Stream:     true,
		ToolChoice: toolChoice,
		Tools:      tools,
	}, options.Stream)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if len(result.ToolCalls) == 0 {
		return result, nil
	}

	messages = append(messages, message{
		Role:      messageRoleAssistant,
		Content:   result.Content,
		ToolCalls: toWireCalls(result.ToolCalls),
	})
	for i := range result.ToolCalls {
		result.ToolCalls[i].Response = executeTool(ctx, options.Tools, result.ToolCalls[i])
		messages = append(messages, message{
			Role:       messageRoleTool,
			ToolCallID: result.ToolCalls[i].ID,
			Content:    result.ToolCalls[i].Response,
		})
	}

	followUp, err := c.completeStreaming(ctx, requestBody{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
	}, options.Stream)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &llms.Response{Content: followUp.Content, ToolCalls: result.ToolCalls}, nil
}

func (c *Client) completeStreaming(ctx context.Context, body requestBody, stream func(string)) (*llms.Response, error) {
	requestBodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionsURL(), bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	var content strings.Builder
	calls := []llms.ToolCall{}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		chunk := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), chunkPrefix))
		if len(chunk) == 0 {
			continue
		}
		if chunk == endMessage {
			break
		}

		var parsed streamingResponseBody
		if err := json.Unmarshal([]byte(chunk), &parsed); err != nil {
			return nil, fmt.Errorf("error unmarshalling chunk: %w", err)
		}
		if len(parsed.Choices) == 0 {
			continue
		}
		delta := parsed.Choices[0].Delta

		for _, fragment := range delta.ToolCalls {
			for len(calls) <= fragment.Index {
				calls = append(calls, llms.ToolCall{})
			}
			call := &calls[fragment.Index]
			if fragment.ID != "" {
				call.ID = fragment.ID
			}
			if fragment.Function.Name != "" {
				call.Name = fragment.Function.Name
			}
			call.Arguments += fragment.Function.Arguments
		}

		if delta.Content != "" {
			content.WriteString(delta.Content)
			if stream != nil {
				stream(delta.Content)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading streamed response: %w", err)
	}

	return &llms.Response{Content: content.String(), ToolCalls: calls}, nil
}
