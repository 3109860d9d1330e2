package constants

// Chat entry types
const (
	ChatTypeUser   = "user"
	ChatTypeBot    = "bot"
	ChatTypeSystem = "system"
	ChatTypeError  = "error"
)

// Chat senders
const (
	SenderUser      = "User"
	SenderAssistant = "Assistant"
	SenderSystem    = "System"
	SenderYou       = "You"
	SenderVoice     = "Voice"
	SenderBot       = "Bot"
	SenderHardware  = "Hardware"
	SenderWeather   = "Weather"
)

// Notification priorities
const (
	PriorityEmergency = "emergency"
	PriorityWarning   = "warning"
	PriorityInfo      = "info"
)
