package models

// ServoRotateRequest is the body of /servo_rotate on both nodes.
type ServoRotateRequest struct {
	ServoNum  int    `json:"servo_num"`
	Direction string `json:"direction"`
}

// EmergencyEvent is fanned out by the brain to every registered node.
type EmergencyEvent struct {
	Timestamp string `json:"timestamp"`
	ClientIP  string `json:"client_ip"`
	Type      string `json:"type"`
	Status    string `json:"status"`
}
