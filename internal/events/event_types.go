package events

import (
	"time"

	"github.com/spec-kit/erms/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAssignmentCreated EventType = "assignment_created"
	EventAssignmentRemoved EventType = "assignment_removed"
	EventProjectCreated    EventType = "project_created"
	EventProjectUpdated    EventType = "project_updated"
	EventProjectDeleted    EventType = "project_deleted"
	EventEngineerUpdated   EventType = "engineer_updated"
	EventEngineerDeleted   EventType = "engineer_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// ActorFrom converts a caller into event actor metadata.
func ActorFrom(caller domain.Caller) Actor {
	return Actor{ID: caller.ID, Role: caller.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// AssignmentPayload describes a created or removed assignment.
type AssignmentPayload struct {
	EngineerID           string `json:"engineer_id"`
	ProjectID            string `json:"project_id"`
	AllocationPercentage int    `json:"allocation_percentage"`
	StartDate            string `json:"start_date"`
	EndDate              string `json:"end_date"`
	Role                 string `json:"role,omitempty"`
}

// ProjectPayload describes a project change.
type ProjectPayload struct {
	Name      string               `json:"name"`
	Status    domain.ProjectStatus `json:"status"`
	OldStatus domain.ProjectStatus `json:"old_status,omitempty"`
}

// EngineerUpdatedPayload describes a profile change.
type EngineerUpdatedPayload struct {
	OldMaxCapacity int              `json:"old_max_capacity"`
	NewMaxCapacity int              `json:"new_max_capacity"`
	Seniority      domain.Seniority `json:"seniority"`
	Skills         []string         `json:"skills"`
}
