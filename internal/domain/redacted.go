package domain

import (
	"fmt"

	"github.com/goccy/go-json"
)

const redactedText = "<redacted>"

// Redacted wraps a secret so it does not leak through logs, fmt verbs or
// JSON encoding. Value is the only way to read it back.
type Redacted string

// NewRedacted wraps s.
func NewRedacted(s string) Redacted { return Redacted(s) }

// Value unwraps the secret.
func (r Redacted) Value() string { return string(r) }

// IsEmpty reports whether no secret is held.
func (r Redacted) IsEmpty() bool { return r == "" }

func (r Redacted) String() string { return redactedText }

func (r Redacted) GoString() string { return redactedText }

// Format covers every fmt verb, including %s and %q on the underlying string.
func (r Redacted) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(redactedText))
}

func (r Redacted) MarshalJSON() ([]byte, error) {
	return json.Marshal(redactedText)
}

func (r Redacted) MarshalText() ([]byte, error) {
	return []byte(redactedText), nil
}

func (r *Redacted) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Redacted(s)
	return nil
}
