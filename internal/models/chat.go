package models

// ChatEntry is a single line of the hardware node's in-memory conversation.
type ChatEntry struct {
	ID        string `json:"id"`
	Type      string `json:"type"` // user, bot, system or error
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"` // HH:MM:SS
}

// ChatRequest is accepted by the brain's chat endpoints and the hardware node's /llm_response.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// ChatResponse carries generated text back to the caller.
type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Mode     string `json:"mode,omitempty"`
}
