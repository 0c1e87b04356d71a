package service

import "github.com/google/uuid"

// Actor is the logged-in identity a request acts as.
type Actor struct {
	ID       uuid.UUID
	Username string
	Name     string
}

// SystemActor is used by seeding and the ops CLI.
var SystemActor = Actor{Username: "system", Name: "System"}

// Ref is the value stored in created_by / updated_by.
func (a Actor) Ref() string {
	if a.ID == uuid.Nil {
		return a.Username
	}
	return a.ID.String()
}

func (a Actor) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Username != "" {
		return a.Username
	}
	return "Unknown"
}

func (a Actor) Payload() map[string]interface{} {
	return map[string]interface{}{
		"id":       a.ID,
		"username": a.Username,
		"name":     a.Name,
	}
}

// EventPublisher fans out change notifications after a write commits.
type EventPublisher interface {
	Publish(action string, payload map[string]interface{})
}

type NopPublisher struct{}

func (NopPublisher) Publish(string, map[string]interface{}) {}
