// Package lifecycle holds the request lifecycle state machine: which status
// transitions exist, and which actions each queue role may be offered for a
// request in a given status.
//
// The backend applies transitions authoritatively; this package exists so
// the client never offers an action the backend would refuse, and so a
// refusal can be recognized for what it is (a lost race, not a bug).
package lifecycle

import (
	"fmt"

	"reqman-cli/internal/model"
)

// Role is the viewing perspective for a queue. It determines both which
// requests are visible and which actions are offered.
type Role string

const (
	RoleMine     Role = "mine"
	RoleManager  Role = "manager"
	RoleAssignee Role = "assignee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMine, RoleManager, RoleAssignee:
		return true
	}
	return false
}

// Action is a user-triggered lifecycle transition. Approve and Reject use
// the backend's wire spelling so they can be sent as-is.
type Action string

const (
	ActionApprove Action = "Approved"
	ActionReject  Action = "Rejected"
	ActionClose   Action = "Close"
)

// Label returns the imperative form used in UI controls.
func (a Action) Label() string {
	switch a {
	case ActionApprove:
		return "Approve"
	case ActionReject:
		return "Reject"
	case ActionClose:
		return "Close"
	}
	return string(a)
}

// InvalidTransitionError reports an attempt to apply an action to a request
// whose status does not allow it.
type InvalidTransitionError struct {
	From   model.Status
	Action Action
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a request in status %s", e.Action.Label(), e.From)
}

// Initial is the status every request is created in.
func Initial() model.Status { return model.StatusPendingApproval }

// Next returns the status an action leads to from the given status.
//
// This mirrors the backend's transition table:
//
//	PendingApproval --approve--> Approved
//	PendingApproval --reject--->  Rejected
//	Approved        --close---->  Closed
func Next(from model.Status, a Action) (model.Status, error) {
	switch a {
	case ActionApprove:
		if from == model.StatusPendingApproval {
			return model.StatusApproved, nil
		}
	case ActionReject:
		if from == model.StatusPendingApproval {
			return model.StatusRejected, nil
		}
	case ActionClose:
		if from == model.StatusApproved {
			return model.StatusClosed, nil
		}
	}
	return "", InvalidTransitionError{From: from, Action: a}
}

// Terminal reports whether no further action can ever apply.
func Terminal(s model.Status) bool {
	return s == model.StatusRejected || s == model.StatusClosed
}

// AllowedActions is the action-availability policy: a pure function of
// queue role and request status deciding which controls to render.
//
// The "mine" queue is view-only regardless of status.
func AllowedActions(role Role, s model.Status) []Action {
	switch role {
	case RoleManager:
		if s == model.StatusPendingApproval {
			return []Action{ActionApprove, ActionReject}
		}
	case RoleAssignee:
		if s == model.StatusApproved {
			return []Action{ActionClose}
		}
	}
	return nil
}

// Allowed reports whether the given role may be offered the action on a
// request in the given status.
func Allowed(role Role, s model.Status, a Action) bool {
	for _, x := range AllowedActions(role, s) {
		if x == a {
			return true
		}
	}
	return false
}
