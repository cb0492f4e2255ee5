// Package alert holds the emergency-alert domain: the entity, its status
// transitions and the repository/service pair serving the alert API.
package alert

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Type classifies the emergency being reported.
type Type = string

const (
	TypeSOS                Type = "SOS"
	TypeHarassment         Type = "HARASSMENT"
	TypeAssault            Type = "ASSAULT"
	TypeStalking           Type = "STALKING"
	TypeMedicalEmergency   Type = "MEDICAL_EMERGENCY"
	TypeFire               Type = "FIRE"
	TypeAccident           Type = "ACCIDENT"
	TypeSuspiciousActivity Type = "SUSPICIOUS_ACTIVITY"
	TypeOther              Type = "OTHER"
)

// Severity grades the urgency of an alert.
type Severity = string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Status is the alert lifecycle state.
type Status = string

const (
	StatusActive       Status = "ACTIVE"
	StatusAcknowledged Status = "ACKNOWLEDGED"
	StatusResponding   Status = "RESPONDING"
	StatusResolved     Status = "RESOLVED"
	StatusFalseAlarm   Status = "FALSE_ALARM"
	StatusCancelled    Status = "CANCELLED"
)

// ErrInvalidTransition is returned when a requested status change is not
// allowed from the alert's current state.
var ErrInvalidTransition = goerrors.New("invalid alert status transition", goerrors.CategoryValidation).
	WithTextCode("INVALID_ALERT_TRANSITION").
	WithCode(goerrors.CodeBadRequest)

// ErrTerminalStatus is returned when mutating an alert that already
// reached a terminal state.
var ErrTerminalStatus = goerrors.New("alert status is terminal", goerrors.CategoryConflict).
	WithTextCode("TERMINAL_ALERT_STATUS").
	WithCode(goerrors.CodeConflict)

// allowedTransitions enumerates every legal status change.
var allowedTransitions = map[Status][]Status{
	StatusActive:       {StatusAcknowledged, StatusResponding, StatusResolved, StatusFalseAlarm, StatusCancelled},
	StatusAcknowledged: {StatusResponding, StatusResolved, StatusFalseAlarm, StatusCancelled},
	StatusResponding:   {StatusResolved, StatusFalseAlarm},
}

// Terminal reports whether no further transition can leave the status.
func Terminal(s Status) bool {
	switch s {
	case StatusResolved, StatusFalseAlarm, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether from→to is a legal status change.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Alert is the emergency-alert record.
type Alert struct {
	bun.BaseModel `bun:"table:emergency_alerts,alias:alrt"`

	ID          uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID      uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	AlertType   Type      `bun:"alert_type,notnull" json:"alert_type"`
	Severity    Severity  `bun:"severity,notnull" json:"severity"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description,omitempty"`

	Latitude  float64 `bun:"latitude" json:"latitude,omitempty"`
	Longitude float64 `bun:"longitude" json:"longitude,omitempty"`
	Address   string  `bun:"address" json:"address,omitempty"`

	Status          Status     `bun:"status,notnull" json:"status"`
	FalseAlarm      bool       `bun:"is_false_alarm" json:"is_false_alarm"`
	EscalationLevel int        `bun:"escalation_level" json:"escalation_level"`
	EscalatedAt     *time.Time `bun:"escalated_at,nullzero" json:"escalated_at,omitempty"`
	ResolvedAt      *time.Time `bun:"resolved_at,nullzero" json:"resolved_at,omitempty"`
	ResolvedBy      *uuid.UUID `bun:"resolved_by,nullzero,type:uuid" json:"resolved_by,omitempty"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Transition applies a status change, stamping the resolution fields for
// the terminal outcomes.
func (a *Alert) Transition(to Status, actor uuid.UUID, now time.Time) error {
	if Terminal(a.Status) {
		return ErrTerminalStatus
	}

	if !CanTransition(a.Status, to) {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": a.Status,
			"to":   to,
		})
	}

	a.Status = to
	a.UpdatedAt = &now

	switch to {
	case StatusResolved:
		a.ResolvedAt = &now
		a.ResolvedBy = &actor
	case StatusFalseAlarm:
		a.FalseAlarm = true
		a.ResolvedAt = &now
		a.ResolvedBy = &actor
	}

	return nil
}

// Escalate bumps the escalation level on a live alert.
func (a *Alert) Escalate(now time.Time) error {
	if Terminal(a.Status) {
		return ErrTerminalStatus
	}

	a.EscalationLevel++
	a.EscalatedAt = &now
	a.UpdatedAt = &now
	return nil
}
