package models

// FunctionCall is a hardware action detected in free text.
type FunctionCall struct {
	Function string         `json:"function"`
	Args     map[string]any `json:"args"`
}

// FunctionResult pairs a call with the envelope the hardware node returned.
type FunctionResult struct {
	Function string         `json:"function"`
	Args     map[string]any `json:"args"`
	Result   map[string]any `json:"result"`
}

// FunctionSpec describes a dispatchable function for /api/available_functions.
type FunctionSpec struct {
	Description string                   `json:"description"`
	Parameters  map[string]ParameterSpec `json:"parameters"`
}

type ParameterSpec struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// FunctionCallRequest is the body of the hardware node's /function_call and the brain's /api/execute_function.
type FunctionCallRequest struct {
	FunctionName string         `json:"function_name"`
	Args         map[string]any `json:"args"`
	ClientIP     string         `json:"client_ip,omitempty"`
}
