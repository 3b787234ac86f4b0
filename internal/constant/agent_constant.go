package constant

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"

	// AgentSystemPromptV1 is sent as the first message of every model call.
	// Catalog search runs before each call; its result arrives as a reference
	// message just before the customer's question.
	AgentSystemPromptV1 = `You are a helpful customer service agent for an e-commerce store.

Before each customer message you receive a catalog reference listing the products
that best match it, or a note that nothing matched.

When responding:
- Use the catalog reference when customers ask about products, features, or prices
- Be friendly and professional
- If you don't find relevant products, politely inform the customer
- Don't make up information about products
- If you're unsure about something, ask for clarification
- If the customer wants to talk to a person, tell them they can request a human agent`
)

const (
	HandoffStatusInitiated = "handoff_initiated"
	HandoffMessage         = "Your conversation will be transferred to a human agent."
	HandoffEventType       = "SESSION_HANDOFF"
	HandoffDurableName     = "handoff-notifier"
)

const (
	MetadataKeyType     = "type"
	MetadataTypeHandoff = "handoff"
	MetadataKeyReason   = "reason"
	MetadataKeyStatus   = "status"
	MetadataKeyWait     = "estimatedWaitTime"
)
