package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEvent is wrapped by every ValidationError.
	ErrInvalidEvent = errors.New("invalid event")

	ErrTenantNotFound = errors.New("tenant not found")
)

// ValidationError names the first required field missing from an event.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidEvent
}

// Stage is a state of the ingestion pipeline.
type Stage string

const (
	StageReceived             Stage = "received"
	StageValidated            Stage = "validated"
	StageTenantResolved       Stage = "tenant_resolved"
	StageContactResolved      Stage = "contact_resolved"
	StageClassified           Stage = "classified"
	StageConversationUpserted Stage = "conversation_upserted"
	StageMessagePersisted     Stage = "message_persisted"
	StageAcknowledged         Stage = "acknowledged"
	StageIgnored              Stage = "ignored"
	StageError                Stage = "error"
)

// IngestError records the last stage reached before a failure.
type IngestError struct {
	Stage Stage
	Err   error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest failed after %s: %v", e.Stage, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}
