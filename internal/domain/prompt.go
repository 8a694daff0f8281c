package domain

import "time"

type PromptType string

const (
	PromptTypeUser     PromptType = "user"
	PromptTypeSystem   PromptType = "system"
	PromptTypeTemplate PromptType = "template"
)

// Prompt is a reusable piece of instruction text, optionally containing
// {{variable}} placeholders.
type Prompt struct {
	ID        string     `validate:"required"`
	Name      string     `validate:"required"`
	Type      PromptType `validate:"oneof=user system template"`
	Prompt    string
	Tags      []string `validate:"required"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Variables lists the template placeholders of the prompt text.
func (p Prompt) Variables() []string {
	return ExtractTemplateVariables(p.Prompt)
}

// DefaultVoiceDescription is shown for voices stored without a description.
const DefaultVoiceDescription = "No description available"

// PromptVoice binds a voice configuration to a prompt. Prompt is the
// denormalized copy of the referenced row.
type PromptVoice struct {
	ID          string `validate:"required"`
	Name        string `validate:"required"`
	Description string
	Type        string
	Label       string
	Key         string
	Prompt      Prompt
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayDescription falls back to DefaultVoiceDescription.
func (v PromptVoice) DisplayDescription() string {
	if v.Description == "" {
		return DefaultVoiceDescription
	}
	return v.Description
}
