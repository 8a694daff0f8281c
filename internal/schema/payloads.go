package schema

import "buddy-server/internal/domain"

// ignored accepts any JSON value and keeps nothing. Server assigned fields
// that clients echo back are declared with it so strict decoding accepts them.
type ignored struct{}

func (*ignored) UnmarshalJSON([]byte) error { return nil }

// PromptCreate is the body of POST /prompt/create. Client supplied
// timestamps are ignored.
type PromptCreate struct {
	Name      string            `json:"name" validate:"required"`
	Type      domain.PromptType `json:"type" validate:"required,oneof=user system template"`
	Prompt    string            `json:"prompt" validate:"required"`
	Tags      []string          `json:"tags" validate:"required"`
	CreatedAt ignored           `json:"created_at" validate:"-"`
	UpdatedAt ignored           `json:"updated_at" validate:"-"`
}

// PromptRef points at an existing prompt. Clients may send the whole
// prompt; only the id is used.
type PromptRef struct {
	ID        string  `json:"id" validate:"required,uuid"`
	Name      ignored `json:"name" validate:"-"`
	Type      ignored `json:"type" validate:"-"`
	Prompt    ignored `json:"prompt" validate:"-"`
	Tags      ignored `json:"tags" validate:"-"`
	CreatedAt ignored `json:"created_at" validate:"-"`
	UpdatedAt ignored `json:"updated_at" validate:"-"`
}

// PromptVoiceCreate is the body of POST /prompt-voice/create. Only the id of
// the embedded prompt is used.
type PromptVoiceCreate struct {
	ID          ignored   `json:"id" validate:"-"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Type        string    `json:"type" validate:"required"`
	Label       string    `json:"label" validate:"required"`
	Key         string    `json:"key" validate:"required"`
	Prompt      PromptRef `json:"prompt" validate:"required"`
	CreatedAt   ignored   `json:"created_at" validate:"-"`
	UpdatedAt   ignored   `json:"updated_at" validate:"-"`
}

// UserCreate is the body of POST /user/create.
type UserCreate struct {
	FirstName string          `json:"firstName" validate:"required"`
	FullName  string          `json:"fullName" validate:"required"`
	Email     string          `json:"email" validate:"required,email"`
	Password  domain.Redacted `json:"password" validate:"required,min=8,max=72"`
	Type      domain.UserType `json:"type" validate:"required,oneof=user admin"`
}

// UserLogin is the body of POST /user/login.
type UserLogin struct {
	Email    string          `json:"email" validate:"required"`
	Password domain.Redacted `json:"password" validate:"required"`
}

// RenderRequest is the body of POST /prompt/render/:id.
type RenderRequest struct {
	Variables map[string]string `json:"variables"`
}

// ID validates a path identifier.
func ID(raw string) (string, error) {
	ref := PromptRef{ID: raw}
	if err := Validate(ref); err != nil {
		return "", err
	}
	return ref.ID, nil
}
