package llms

// Role describes who a conversation turn is from.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is a single turn taken in the conversation.
type Turn struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant turns that requested tool execution.
	ToolCalls []ToolCall
	// ToolCallID is set on tool turns and names the call being answered.
	ToolCallID string
}

// Response is a single response from the reasoning backend.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolCall is a tool invocation requested by the backend: a name plus a JSON
// argument payload. Response carries the opaque result string re-injected
// into the conversation.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
	Response  string
}
