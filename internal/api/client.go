// Package api is the request transport: one method per backend operation,
// JSON over HTTP against a configured base URL, with failures normalized
// into the four-type taxonomy in errors.go.
//
// Session handling is cross-cutting: every call attaches the current token
// when present, and a 401 from any operation tears the session down once
// through the same path.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reqman-cli/internal/config"
	"reqman-cli/internal/lifecycle"
	"reqman-cli/internal/model"
	"reqman-cli/internal/session"
)

// Description length bounds enforced client-side before createRequest. The
// backend check remains authoritative.
const (
	MinDescriptionLen = 3
	MaxDescriptionLen = 2000
)

type Client struct {
	baseURL string
	http    *http.Client

	store session.Store
	sess  *session.Session

	// onTeardown runs after the session has been cleared due to an
	// authorization failure; the UI uses it to route back to login.
	onTeardown func()
}

func New(cfg config.Config, store session.Store, sess *session.Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.HTTPTimeout()},
		store:   store,
		sess:    sess,
	}
}

// OnTeardown registers the hook invoked after forced session teardown.
func (c *Client) OnTeardown(fn func()) { c.onTeardown = fn }

// Session returns the current session, or nil when logged out.
func (c *Client) Session() *session.Session { return c.sess }

// Authenticate logs in and persists the resulting session. Invalid
// credentials surface as AuthError and are never retried; a login failure
// does not touch any existing session state.
func (c *Client) Authenticate(ctx context.Context, userName, password string) (*session.Session, error) {
	userName = strings.TrimSpace(userName)
	password = strings.TrimSpace(password)
	if userName == "" || password == "" {
		return nil, ValidationError{Field: "credentials", Message: "username and password are required"}
	}

	body := map[string]string{"userName": userName, "password": password}
	var data struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/auth/user/authenticate", body, &data, authFailureKind); err != nil {
		return nil, err
	}
	if strings.TrimSpace(data.Token) == "" {
		return nil, TransportError{Op: "authenticate", Err: fmt.Errorf("backend returned no token")}
	}

	user, _ := session.IdentityFromToken(data.Token, userName)
	sess := &session.Session{Token: data.Token, User: user}
	if err := c.store.Save(sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	c.sess = sess
	return sess, nil
}

// Logout discards the persisted session. It is a purely local operation.
func (c *Client) Logout() error {
	c.sess = nil
	return c.store.Clear()
}

// ValidateDescription applies the create-request description constraint.
func ValidateDescription(s string) error {
	n := len(strings.TrimSpace(s))
	if n < MinDescriptionLen || n > MaxDescriptionLen {
		return ValidationError{
			Field:   "request",
			Message: fmt.Sprintf("description must be %d-%d characters", MinDescriptionLen, MaxDescriptionLen),
		}
	}
	return nil
}

// CreateRequest creates a request assigned to the given user. Both checks
// run client-side first to avoid a pointless round trip.
func (c *Client) CreateRequest(ctx context.Context, description string, assigneeID int) error {
	description = strings.TrimSpace(description)
	if err := ValidateDescription(description); err != nil {
		return err
	}
	if assigneeID <= 0 {
		return ValidationError{Field: "assigneeId", Message: "an assignee is required"}
	}

	body := map[string]any{"request": description, "assigneeId": assigneeID}
	return c.post(ctx, "/request/create", body, nil, validationFailureKind)
}

// ApplyTransition approves or rejects a pending request. A trimmed-empty
// comment is sent as absent, not as an empty string. A request no longer
// in PendingApproval surfaces as ConflictError.
func (c *Client) ApplyTransition(ctx context.Context, requestID int, action lifecycle.Action, comment string) error {
	if action != lifecycle.ActionApprove && action != lifecycle.ActionReject {
		return ValidationError{Field: "action", Message: fmt.Sprintf("invalid transition action %q", action)}
	}
	if requestID <= 0 {
		return ValidationError{Field: "requestId", Message: "invalid request id"}
	}

	body := map[string]any{"requestId": requestID, "action": string(action)}
	if comment = strings.TrimSpace(comment); comment != "" {
		body["comment"] = comment
	}
	return c.post(ctx, "/request/approve", body, nil, conflictFailureKind)
}

// CloseRequest closes an approved request. A request not currently in
// Approved surfaces as ConflictError.
func (c *Client) CloseRequest(ctx context.Context, requestID int) error {
	if requestID <= 0 {
		return ValidationError{Field: "requestId", Message: "invalid request id"}
	}
	body := map[string]any{"requestId": requestID}
	return c.post(ctx, "/request/close", body, nil, conflictFailureKind)
}

// Queue fetches one page of the role-scoped queue. Pages beyond the last
// return zero records with the true total; that is a success, not an error.
func (c *Client) Queue(ctx context.Context, role lifecycle.Role, page, count int) (model.QueuePage, error) {
	if !role.Valid() {
		return model.QueuePage{}, ValidationError{Field: "role", Message: fmt.Sprintf("unknown queue role %q", role)}
	}
	if page < 1 || count < 1 {
		return model.QueuePage{}, ValidationError{Field: "page", Message: "page and count must be positive"}
	}

	path := map[lifecycle.Role]string{
		lifecycle.RoleMine:     "/request/mine",
		lifecycle.RoleManager:  "/request/managerQueue",
		lifecycle.RoleAssignee: "/request/assigneeQueue",
	}[role]

	body := map[string]int{"page": page, "count": count}
	var data model.QueuePage
	if err := c.post(ctx, path, body, &data, transportFailureKind); err != nil {
		return model.QueuePage{}, err
	}
	if data.Records == nil {
		data.Records = []model.Request{}
	}
	return data, nil
}

// Assignees lists candidate assignees for the create-request form.
func (c *Client) Assignees(ctx context.Context, page, count int) ([]model.UserMeta, error) {
	if page < 1 || count < 1 {
		return nil, ValidationError{Field: "page", Message: "page and count must be positive"}
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("count", strconv.Itoa(count))

	var data []model.UserMeta
	if err := c.get(ctx, "/request/assignees?"+q.Encode(), &data, transportFailureKind); err != nil {
		return nil, err
	}
	if data == nil {
		data = []model.UserMeta{}
	}
	return data, nil
}

// failureKind selects the error type for an operation's business failure
// (a 2xx envelope with success=false, or a 4xx without a clearer mapping).
// Each operation has exactly one business failure mode in the backend's
// contract, so the mapping lives with the call, not in per-status guesswork.
type failureKind int

const (
	transportFailureKind failureKind = iota
	authFailureKind
	validationFailureKind
	conflictFailureKind
)

func (k failureKind) errorFor(message string) error {
	switch k {
	case authFailureKind:
		return AuthError{Message: message}
	case validationFailureKind:
		return ValidationError{Message: message}
	case conflictFailureKind:
		return ConflictError{Message: message}
	default:
		return TransportError{Op: "request", Err: fmt.Errorf("%s", message)}
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) post(ctx context.Context, path string, body any, out any, kind failureKind) error {
	b, err := json.Marshal(body)
	if err != nil {
		return TransportError{Op: "POST " + path, Err: err}
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(b), out, kind)
}

func (c *Client) get(ctx context.Context, path string, out any, kind failureKind) error {
	return c.do(ctx, http.MethodGet, path, nil, out, kind)
}

func (c *Client) do(ctx context.Context, method, path string, body *bytes.Reader, out any, kind failureKind) error {
	op := method + " " + path

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sess != nil && strings.TrimSpace(c.sess.Token) != "" {
		// The backend expects the raw token, not a "Bearer " prefix.
		req.Header.Set("Authorization", c.sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.teardown()
		return AuthError{Message: messageOr(env.Message, "session expired")}
	case resp.StatusCode == http.StatusConflict:
		return ConflictError{Message: env.Message}
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return ValidationError{Message: messageOr(env.Message, "invalid input")}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return TransportError{Op: op, Err: fmt.Errorf("backend returned status %d", resp.StatusCode)}
	}

	if decodeErr != nil {
		return TransportError{Op: op, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if !env.Success {
		return kind.errorFor(env.Message)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return TransportError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	return nil
}

// teardown clears the session after an authorization failure. When no
// session exists (a rejected login while logged out) there is nothing to
// clear and the hook does not fire.
func (c *Client) teardown() {
	if c.sess == nil {
		return
	}
	c.sess = nil
	_ = c.store.Clear()
	if c.onTeardown != nil {
		c.onTeardown()
	}
}

func messageOr(msg, def string) string {
	if strings.TrimSpace(msg) != "" {
		return msg
	}
	return def
}

// Timeout reports the client's per-request timeout; views use it to size
// their own context deadlines.
func (c *Client) Timeout() time.Duration { return c.http.Timeout }
