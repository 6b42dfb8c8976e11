package dto

// GenerateRequest is the wire body of the generate endpoint. Field names
// follow the original worker contract.
type GenerateRequest struct {
	Message             string `json:"message"`
	ConversationHistory string `json:"conversationHistory,omitempty"`
	Category            string `json:"category,omitempty"`
	SessionId           string `json:"sessionId,omitempty"`
}

type GenerateResponse struct {
	Message   string `json:"message"`
	Category  string `json:"category,omitempty"`
	Timestamp string `json:"timestamp"`
}

// GenerateErrorResponse is every failure shape the endpoint produces.
type GenerateErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
