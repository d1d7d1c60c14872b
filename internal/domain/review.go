package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/cbpricey/Motion-Industries/internal/pkg/errors"
)

// Status is the review lifecycle state of a candidate image. "pending" is
// set by the upstream scoring pipeline; reviewers move records into the two
// proposal states; only admins produce the terminal states.
type Status string

const (
	StatusPending        Status = "pending"
	StatusPendingApprove Status = "pending-approve"
	StatusPendingReject  Status = "pending-reject"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
)

// legacyStatuses maps spellings found in older ingestion snapshots onto the
// canonical vocabulary. Normalized on read only, never written back.
var legacyStatuses = map[string]Status{
	"pending_approval": StatusPendingApprove,
	"pending_rejected": StatusPendingReject,
	"accepted":         StatusApproved,
}

// NormalizeStatus maps a stored status string onto the canonical enum.
// Empty and unrecognized values default to pending.
func NormalizeStatus(s string) Status {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return StatusPending
	}
	if legacy, ok := legacyStatuses[v]; ok {
		return legacy
	}
	switch Status(v) {
	case StatusPending, StatusPendingApprove, StatusPendingReject, StatusApproved, StatusRejected:
		return Status(v)
	}
	return StatusPending
}

// IsTerminal reports whether s is a final admin decision.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsProposal reports whether s is a reviewer proposal awaiting an admin.
func (s Status) IsProposal() bool {
	return s == StatusPendingApprove || s == StatusPendingReject
}

// Action is a requested review transition.
type Action string

const (
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionSendToPending Action = "sendToPending"
)

func ParseAction(s string) (Action, error) {
	switch strings.TrimSpace(s) {
	case string(ActionApprove):
		return ActionApprove, nil
	case string(ActionReject):
		return ActionReject, nil
	case string(ActionSendToPending), "send_to_pending":
		return ActionSendToPending, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", apperrors.ErrInvalidArgument, s)
	}
}

// NextStatus is the single source of truth for the transition policy.
// Reviewers may only produce proposal states; admins may finalize, override
// a proposal, or send a record back to pending. Every combination outside
// the table fails with ErrForbidden carrying the attempted role and action.
func NextStatus(role Role, action Action) (Status, error) {
	switch role {
	case RoleReviewer:
		switch action {
		case ActionApprove:
			return StatusPendingApprove, nil
		case ActionReject:
			return StatusPendingReject, nil
		}
	case RoleAdmin:
		switch action {
		case ActionApprove:
			return StatusApproved, nil
		case ActionReject:
			return StatusRejected, nil
		case ActionSendToPending:
			return StatusPending, nil
		}
	}
	return "", fmt.Errorf("%w: role %s cannot perform %s", apperrors.ErrForbidden, role, action)
}

// IsOverride reports whether an admin finalized a candidate to the opposite
// disposition from the reviewer's proposal.
func IsOverride(original, final Status) bool {
	return (original == StatusPendingApprove && final == StatusRejected) ||
		(original == StatusPendingReject && final == StatusApproved)
}
