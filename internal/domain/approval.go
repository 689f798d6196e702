package domain

import "strings"

// ApprovalStatus is shared by vehicles and slot requests.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// ParseApprovalStatus normalises an approval status.
func ParseApprovalStatus(raw string) (ApprovalStatus, bool) {
	switch s := ApprovalStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return s, true
	default:
		return "", false
	}
}

// ApprovalAction names a reviewer decision.
type ApprovalAction string

const (
	ActionApprove ApprovalAction = "approve"
	ActionReject  ApprovalAction = "reject"
)

var approvalTransitions = map[ApprovalAction][]ApprovalStatus{
	ActionApprove: {ApprovalPending},
	ActionReject:  {ApprovalPending},
}

// CanTransition reports whether action may be applied to an entity currently in from.
// APPROVED and REJECTED are terminal.
func CanTransition(action ApprovalAction, from ApprovalStatus) bool {
	allowed, ok := approvalTransitions[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further review action is possible.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}
