package types

// Conversation roles accepted from the client
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// RegionAll is the sentinel region meaning "any cuisine"
const RegionAll = "all"

// ConversationTurn is one prior message of the conversation
type ConversationTurn struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// ChatRequest is the body accepted by the chat endpoint
type ChatRequest struct {
	Message string             `json:"message"`
	Region  string             `json:"region"`
	History []ConversationTurn `json:"history" binding:"omitempty,dive"`
}

// ChatResponse is the cleaned reply plus the recipe extracted from it, if any
type ChatResponse struct {
	Response string  `json:"response"`
	Recipe   *Recipe `json:"recipe"`
}
