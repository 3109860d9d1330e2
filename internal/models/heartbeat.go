package models

// Heartbeat is the brain node's liveness reply.
type Heartbeat struct {
	Status       string `json:"status"`
	ServerTime   string `json:"server_time"`
	ClientsCount int    `json:"clients_count"`
}
