package domain

import (
	"fmt"
	"strings"
)

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusPending, TicketStatusCanceled},
	TicketStatusInProgress: {TicketStatusPending, TicketStatusResolved, TicketStatusCanceled},
	TicketStatusPending:    {TicketStatusInProgress, TicketStatusResolved, TicketStatusCanceled},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusInProgress},
	TicketStatusClosed:     {TicketStatusInProgress},
	TicketStatusCanceled:   {},
}

// NextStatuses returns the statuses reachable from current. Canceled is
// terminal and yields an empty list.
func NextStatuses(current TicketStatus) []TicketStatus {
	return append([]TicketStatus{}, allowedTransitions[current]...)
}

// CanTransition reports whether the workflow table lists the edge.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseTicketStatus matches a status name case-insensitively.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	raw = strings.TrimSpace(raw)
	for _, status := range TicketStatuses {
		if strings.EqualFold(string(status), raw) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown ticket status %q", raw)
}

// WorkflowPolicy decides whether ChangeStatus enforces the transition table.
type WorkflowPolicy string

const (
	// WorkflowStrict rejects unknown statuses and edges missing from the table.
	WorkflowStrict WorkflowPolicy = "strict"
	// WorkflowPermissive ignores unknown statuses and accepts any valid target.
	WorkflowPermissive WorkflowPolicy = "permissive"
)

// ParseWorkflowPolicy parses a policy name, defaulting to strict when empty.
func ParseWorkflowPolicy(raw string) (WorkflowPolicy, error) {
	switch WorkflowPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", WorkflowStrict:
		return WorkflowStrict, nil
	case WorkflowPermissive:
		return WorkflowPermissive, nil
	default:
		return "", fmt.Errorf("unknown workflow policy %q", raw)
	}
}
