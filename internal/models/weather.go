package models

// WeatherReport is the normalised current-weather reply.
type WeatherReport struct {
	Success     bool    `json:"success"`
	City        string  `json:"city,omitempty"`
	Country     string  `json:"country,omitempty"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	Pressure    int     `json:"pressure"`
	Description string  `json:"description,omitempty"`
	WindSpeed   float64 `json:"wind_speed"`
	Units       string  `json:"units,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Error       string  `json:"error,omitempty"`
	Message     string  `json:"message,omitempty"`
}
