package llms

// PromptOptions carries everything a backend client needs to assemble one
// request besides the user prompt itself.
type PromptOptions struct {
	// Instructions is the system prompt prepended to the message sequence.
	Instructions string
	// History is the trimmed conversation window, oldest first.
	History []Turn
	// Tools is the tool surface attached to the request.
	Tools []Tool
	// Stream, when set, is called for each streamed content chunk.
	Stream func(chunk string)
}

type PromptOption func(*PromptOptions)

// WithSystemPrompt sets the system instructions for the request.
// Repeating this option overwrites the previous instructions.
func WithSystemPrompt(instructions string) PromptOption {
	return func(o *PromptOptions) { o.Instructions = instructions }
}

// WithHistory sets the conversation history included in the request.
func WithHistory(history []Turn) PromptOption {
	return func(o *PromptOptions) { o.History = history }
}

// WithTools adds tools to the request's tool surface.
func WithTools(tools ...Tool) PromptOption {
	return func(o *PromptOptions) { o.Tools = append(o.Tools, tools...) }
}

// WithStream sets the callback invoked per streamed content chunk.
func WithStream(stream func(chunk string)) PromptOption {
	return func(o *PromptOptions) { o.Stream = stream }
}
