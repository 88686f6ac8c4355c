package model

import (
	"strings"
	"time"
)

// Status is a request's lifecycle state. The backend owns transitions; the
// client only mirrors the value it was last told.
type Status string

const (
	StatusPendingApproval Status = "PendingApproval"
	StatusApproved        Status = "Approved"
	StatusRejected        Status = "Rejected"
	StatusClosed          Status = "Closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusRejected, StatusClosed:
		return true
	}
	return false
}

// UserMeta is the lightweight user reference embedded in requests and
// returned by the assignee listing.
type UserMeta struct {
	ID         int     `json:"id"`
	FirstName  string  `json:"firstName"`
	MiddleName *string `json:"middleName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	Email      string  `json:"email"`
}

// DisplayName joins the non-empty name parts in first/middle/last order.
func (u UserMeta) DisplayName() string {
	parts := []string{strings.TrimSpace(u.FirstName)}
	if u.MiddleName != nil && strings.TrimSpace(*u.MiddleName) != "" {
		parts = append(parts, strings.TrimSpace(*u.MiddleName))
	}
	if u.LastName != nil && strings.TrimSpace(*u.LastName) != "" {
		parts = append(parts, strings.TrimSpace(*u.LastName))
	}
	return strings.Join(parts, " ")
}

// Request is the central entity. Requestor and Assignee are fixed at
// creation; Approver is set by the backend when a manager approves or
// rejects, and stays nil in every other state.
type Request struct {
	RequestID int       `json:"requestID"`
	Request   string    `json:"request"`
	Status    Status    `json:"status"`
	Requestor UserMeta  `json:"requestor"`
	Assignee  UserMeta  `json:"assignee"`
	Approver  *UserMeta `json:"approver,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthenticatedUser is the identity of the logged-in user, extracted from
// the token at login time and persisted alongside it.
type AuthenticatedUser struct {
	ID        int     `json:"id"`
	Email     string  `json:"email"`
	UserName  string  `json:"userName"`
	MobileNo  *string `json:"mobileNo,omitempty"`
	PhoneCode *string `json:"phoneCode,omitempty"`
}

// QueuePage is one page of a role-scoped queue plus the queue's total
// record count. Pages are transient: every view refetches rather than
// sharing or caching them.
type QueuePage struct {
	Records []Request `json:"records"`
	Total   int       `json:"total"`
}
