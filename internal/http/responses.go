package http

import (
	"time"

	"buddy-server/internal/domain"
	"buddy-server/internal/service"
)

type PromptResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Prompt    string   `json:"prompt"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type PromptVoiceResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Label       string         `json:"label"`
	Key         string         `json:"key"`
	Prompt      PromptResponse `json:"prompt"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// UserResponse never carries the password.
type UserResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type AuthTokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type RenderResponse struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Variables []string `json:"variables"`
}

type ExportResponse struct {
	Location  string `json:"location"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}

func promptToResponse(p domain.Prompt) PromptResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PromptResponse{
		ID:        p.ID,
		Name:      p.Name,
		Type:      string(p.Type),
		Prompt:    p.Prompt,
		Tags:      tags,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

func promptVoiceToResponse(v domain.PromptVoice) PromptVoiceResponse {
	return PromptVoiceResponse{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.DisplayDescription(),
		Type:        v.Type,
		Label:       v.Label,
		Key:         v.Key,
		Prompt:      promptToResponse(v.Prompt),
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   v.UpdatedAt.Format(time.RFC3339),
	}
}

func userToResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		FullName:  u.FullName,
		Email:     u.Email,
		Type:      string(u.Type),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

func authTokenToResponse(t domain.AuthToken) AuthTokenResponse {
	return AuthTokenResponse{
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt.UTC().Format(time.RFC3339),
		User:      userToResponse(t.User),
	}
}

func exportToResponse(e service.PromptExport) ExportResponse {
	return ExportResponse{
		Location:  e.Location,
		URL:       e.URL,
		ExpiresAt: e.ExpiresAt.Format(time.RFC3339),
	}
}
