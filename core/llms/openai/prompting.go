package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jinzhu/copier"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/voxflow/voxflow-core/core/llms"
	"github.com/voxflow/voxflow-core/internal/utils"
)

type requestBody struct {
	Model      string    `json:"model"`
	Messages   []message `json:"messages"`
	Stream     bool      `json:"stream"`
	ToolChoice *string   `json:"tool_choice,omitempty"`
	Tools      []tool    `json:"tools,omitempty"`
}

type responseBody struct {
	Choices []struct {
		Message struct {
			Role      string     `json:"role"`
			Content   string     `json:"content"`
			ToolCalls []toolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Prompt issues one chat-completion request and, if the backend requests
// tools, executes them in the order listed and issues exactly one follow-up
// request with the results appended. Deeper tool chains are not supported:
// tool calls in the follow-up response are ignored and its content returned
// as-is.
func (c *Client) Prompt(ctx context.Context, prompt string, opts ...llms.PromptOption) (*llms.Response, error) {
	options := llms.PromptOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, span := tracer.Start(ctx, "backend prompt")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.model))

	messages := toMessages(options.Instructions, options.History, prompt)

	var toolChoice *string
	var tools []tool
	if len(options.Tools) > 0 {
		toolChoice = utils.Ptr("auto")
		tools = toTools(options.Tools)
	}

	result, err := c.complete(ctx, requestBody{
		Model:      c.model,
		Messages:   messages,
		ToolChoice: toolChoice,
		Tools:      tools,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if len(result.ToolCalls) == 0 {
		return result, nil
	}

	// Tool round trip: execute each requested call, append the assistant
	// message plus one tool-result message per call, and ask again.
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

	followUp, err := c.complete(ctx, requestBody{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	response := &llms.Response{Content: followUp.Content}
	copier.Copy(&response.ToolCalls, result.ToolCalls)
	return response, nil
}

func (c *Client) complete(ctx context.Context, body requestBody) (*llms.Response, error) {
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

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var parsed responseBody
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("error unmarshalling response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("backend response contained no choices")
	}

	result := &llms.Response{Content: parsed.Choices[0].Message.Content}
	for _, tCall := range parsed.Choices[0].Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, llms.ToolCall{
			ID:        tCall.ID,
			Name:      tCall.Function.Name,
			Arguments: tCall.Function.Arguments,
		})
	}
	return result, nil
}

// executeTool runs one requested call against the configured tool surface.
// Failures are substituted with an error string so the follow-up request
// keeps a coherent conversation instead of aborting the turn.
func executeTool(ctx context.Context, tools []llms.Tool, call llms.ToolCall) string {
	_, span := tracer.Start(ctx, "execute tool")
	defer span.End()
	span.SetAttributes(attribute.String("tool.name", call.Name))

	for _, t := range tools {
		if t.Name != call.Name {
			continue
		}
		result, err := t.Execute(call.Arguments)
		if err != nil {
			err = fmt.Errorf("failed to execute tool %q: %w", call.Name, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error("tool execution failed", "tool", call.Name, "error", err)
			return fmt.Sprintf("Error executing %s: %v", call.Name, err)
		}
		return result
	}

	err := fmt.Errorf("tool not found: %s", call.Name)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return fmt.Sprintf("Unknown tool: %s", call.Name)
}

func toWireCalls(calls []llms.ToolCall) []toolCall {
	wireCalls := make([]toolCall, 0, len(calls))
	for _, call := range calls {
		wireCalls = append(wireCalls, toolCall{
			ID:   call.ID,
			Type: "function",
			Function: toolCallFunction{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		})
	}
	return wireCalls
}
