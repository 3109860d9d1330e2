package constants

// Node identity
const (
	ClientTypeRaspberryPi = "raspberry_pi"
	ClientVersion         = "1.0"
	ServerVersion         = "1.0"
)

// Hardware modes
const (
	HardwareModeReal = "real"
	HardwareModeMock = "mock"
	HardwareModeAuto = "auto"
)

// Status values used by heartbeat and schedule payloads.
const (
	StatusOK        = "ok"
	StatusTaken     = "taken"
	StatusUpcoming  = "upcoming"
	StatusConnected = "connected"
	StatusOffline   = "offline"
)
