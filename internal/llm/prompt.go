package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benmeehan/zima/internal/models"
)

const userRequestMarker = "User request:"

// SystemPrompt frames the assistant for the dispenser's two slots and four actions.
const SystemPrompt = `You are an assistant for a smart pill dispenser system called Zima Pharma.
The system has two medication slots:
- Slot 1 contains Paracetamol (500mg) for pain and fever
- Slot 2 contains Antibiotics (250mg) that should be taken with food

You can perform the following actions:
1. Get weather information for any city
2. Control servo motors (rotate 90 degrees clockwise or counterclockwise)
3. Dispense medication from compartments
4. Measure distance to check pill pickup

When users ask about weather, servo control, or medication dispensing, I will execute the appropriate functions.
Always provide helpful medical information and remind users about proper medication usage.
For emergencies or serious medical concerns, advise users to contact a healthcare professional.`

// Apologies returned to the user instead of generated text.
const (
	ReplyUpstreamError = "I'm having trouble processing your request. Please try again later."
	ReplyInternalError = "Sorry, I encountered an error. Please try again."
)

// UserContext summarises a profile for the prompt. A nil profile yields "".
func UserContext(p *models.UserProfile) string {
	if p == nil {
		return ""
	}

	name := p.Personal.Name
	if name == "" {
		name = "Unknown"
	}
	age := "Unknown"
	if p.Personal.Age > 0 {
		age = fmt.Sprint(p.Personal.Age)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User: %s, Age: %s\n", name, age)
	if len(p.MedicalHistory.Conditions) > 0 {
		fmt.Fprintf(&b, "Medical conditions: %s\n", strings.Join(p.MedicalHistory.Conditions, ", "))
	}
	if len(p.MedicalHistory.Allergies) > 0 {
		fmt.Fprintf(&b, "Allergies: %s\n", strings.Join(p.MedicalHistory.Allergies, ", "))
	}
	if len(p.Medications) > 0 {
		b.WriteString("Current medications:\n")
		for _, m := range p.Medications {
			fmt.Fprintf(&b, "- %s (%s) in slot %d\n", m.Name, m.Dosage, m.Slot)
		}
	}
	return b.String()
}

// ChatPrompt wraps the user's message with their context.
func ChatPrompt(userContext, message string) string {
	return fmt.Sprintf("%s\n\n%s %s\n\nPlease respond to the user's request considering their medical information above.",
		userContext, userRequestMarker, message)
}

// ExtractUserRequest returns the text after the last "User request:" marker up to the
// next blank line, or the whole prompt when there is no marker.
func ExtractUserRequest(prompt string) string {
	idx := strings.LastIndex(prompt, userRequestMarker)
	if idx < 0 {
		return prompt
	}
	rest := prompt[idx+len(userRequestMarker):]
	if end := strings.Index(rest, "\n\n"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// AppendResults adds the function execution block to prompt.
func AppendResults(prompt string, results []models.FunctionResult) string {
	if len(results) == 0 {
		return prompt
	}

	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nFunction execution results:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "- %s(%s): %s\n", r.Function, compactJSON(r.Args), compactJSON(r.Result))
	}
	b.WriteString("\n\nPlease respond based on the function results above.")
	return b.String()
}

func compactJSON(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}
