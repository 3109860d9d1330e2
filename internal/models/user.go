package models

// UserProfile is persisted as one <id>.json file per user.
type UserProfile struct {
	ID             string         `json:"id"`
	Personal       PersonalInfo   `json:"personal"`
	MedicalHistory MedicalHistory `json:"medical_history"`
	Medications    []Medication   `json:"medications"`
}

type PersonalInfo struct {
	Name   string `json:"name"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

type MedicalHistory struct {
	Conditions []string `json:"conditions"`
	Allergies  []string `json:"allergies"`
}

type Medication struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage"`
	Schedule string `json:"schedule,omitempty"`
	Slot     int    `json:"slot"`
}

// UserOption is the compact form listed in user pickers.
type UserOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
