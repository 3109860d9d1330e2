package models

import "time"

// RegistrationPayload represents the body a hardware node posts to /api/register_client.
type RegistrationPayload struct {
	// ClientType identifies the kind of hardware node, e.g. "raspberry_pi".
	ClientType string `json:"client_type"`

	// ClientIP is the address the node believes it is reachable on.
	ClientIP string `json:"client_ip"`

	// ClientVersion is the node's semantic version; registrations below the brain's constraint are rejected.
	ClientVersion string `json:"client_version"`

	// HardwareMode is "real" when GPIO is driven, "mock" otherwise.
	HardwareMode string `json:"hardware_mode"`

	// InstanceID is the persisted identity of the node.
	InstanceID string `json:"instance_id,omitempty"`
}

// RegisteredClient is a registry record keyed by the caller's address.
type RegisteredClient struct {
	Address string `json:"address"`
	RegistrationPayload
	LastSeen time.Time `json:"last_seen"`
}

// RegistrationResponse represents the brain's reply to a successful registration.
type RegistrationResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ClientIP   string `json:"client_ip"`
	ServerTime string `json:"server_time"`
}
