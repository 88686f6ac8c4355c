package cli

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"reqman-cli/internal/session"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, success bool, message string, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"message": message,
		"data":    data,
	}); err != nil {
		t.Errorf("encode envelope: %v", err)
	}
}

func unsignedJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal claims: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(b)
	}
	header := map[string]any{"alg": "none", "typ": "JWT"}
	return enc(header) + "." + enc(claims) + "."
}

func seedSession(t *testing.T, dir, token string) {
	t.Helper()
	store := session.Store{Dir: dir}
	err := store.Save(&session.Session{Token: token})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestLogin_PersistsSessionAndPrintsIdentity(t *testing.T) {
	t.Parallel()

	token := unsignedJWT(t, map[string]any{"id": 7, "email": "ana@example.com", "userName": "ana"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/user/authenticate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["userName"] != "ana" || body["password"] != "s3cret" {
			t.Errorf("credentials = %v", body)
		}
		writeEnvelope(t, w, http.StatusOK, true, "", map[string]any{"token": token})
	}))
	defer srv.Close()

	dir := t.TempDir()
	out, errOut, err := runCLI(t, []string{
		"--url", srv.URL, "--config-dir", dir,
		"login", "--username", "ana", "--password", "s3cret",
	})
	if err != nil {
		t.Fatalf("login error: %v\nstderr:\n%s", err, string(errOut))
	}

	var resp struct {
		Data struct {
			ID       int    `json:"id"`
			UserName string `json:"userName"`
			Email    string `json:"email"`
		} `json:"data"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("unmarshal output: %v\nstdout:\n%s", err, string(out))
	}
	if resp.Data.ID != 7 || resp.Data.UserName != "ana" || resp.Data.Email != "ana@example.com" {
		t.Fatalf("identity = %+v", resp.Data)
	}

	// The session file is the durable artifact.
	sess, err := (session.Store{Dir: dir}).Load()
	if err != nil || sess == nil {
		t.Fatalf("load session: %v %v", sess, err)
	}
	if sess.Token != token {
		t.Fatalf("persisted token = %q", sess.Token)
	}
}

func TestLogin_InvalidCredentialsSurfaceBackendMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, false, "invalid username or password", nil)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, errOut, err := runCLI(t, []string{
		"--url", srv.URL, "--config-dir", dir,
		"login", "--username", "ana", "--password", "wrong",
	})
	if err == nil {
		t.Fatal("expected login to fail")
	}
	if !bytes.Contains(errOut, []byte("invalid username or password")) {
		t.Fatalf("stderr = %q, want backend message verbatim", string(errOut))
	}

	// A failed login must not leave a session behind.
	if _, statErr := os.Stat(filepath.Join(dir, "session.json")); !os.IsNotExist(statErr) {
		t.Fatalf("session file exists after failed login: %v", statErr)
	}
}

func TestWhoami_RequiresLogin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, errOut, err := runCLI(t, []string{"--config-dir", dir, "whoami"})
	if err == nil {
		t.Fatal("expected whoami to fail while logged out")
	}
	if !bytes.Contains(errOut, []byte("not logged in")) {
		t.Fatalf("stderr = %q", string(errOut))
	}
}

func TestRequestsList_PostsPageAndRendersQueue(t *testing.T) {
	t.Parallel()

	token := unsignedJWT(t, map[string]any{"id": 7, "userName": "mel"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/request/managerQueue" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != token {
			t.Errorf("Authorization = %q, want raw token", got)
		}
		var body map[string]int
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["page"] != 2 || body["count"] != 5 {
			t.Errorf("pagination = %v", body)
		}
		writeEnvelope(t, w, http.StatusOK, true, "", map[string]any{
			"records": []map[string]any{{
				"requestID": 42,
				"request":   "replace build server",
				"status":    "PendingApproval",
				"requestor": map[string]any{"id": 1, "firstName": "Ana", "email": "ana@example.com"},
				"assignee":  map[string]any{"id": 2, "firstName": "Bo", "email": "bo@example.com"},
			}},
			"total": 11,
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	seedSession(t, dir, token)

	out, errOut, err := runCLI(t, []string{
		"--url", srv.URL, "--config-dir", dir,
		"requests", "list", "--queue", "manager", "--page", "2", "--page-size", "5",
	})
	if err != nil {
		t.Fatalf("list error: %v\nstderr:\n%s", err, string(errOut))
	}

	var resp struct {
		Data struct {
			Total    int `json:"total"`
			Requests []struct {
				RequestID int    `json:"requestID"`
				Status    string `json:"status"`
			} `json:"requests"`
		} `json:"data"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("unmarshal output: %v\nstdout:\n%s", err, string(out))
	}
	if resp.Data.Total != 11 || len(resp.Data.Requests) != 1 {
		t.Fatalf("data = %+v", resp.Data)
	}
	if resp.Data.Requests[0].RequestID != 42 || resp.Data.Requests[0].Status != "PendingApproval" {
		t.Fatalf("request = %+v", resp.Data.Requests[0])
	}
}

func TestRequestsList_RejectsUnknownQueue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedSession(t, dir, "tok")
	_, errOut, err := runCLI(t, []string{
		"--config-dir", dir, "requests", "list", "--queue", "everything",
	})
	if err == nil {
		t.Fatal("expected unknown queue to fail")
	}
	if !bytes.Contains(errOut, []byte("unknown queue")) {
		t.Fatalf("stderr = %q", string(errOut))
	}
}

func TestRequestsApprove_SendsActionAndComment(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/request/approve" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["requestId"] != float64(42) || body["action"] != "Approved" || body["comment"] != "budget confirmed" {
			t.Errorf("body = %v", body)
		}
		writeEnvelope(t, w, http.StatusOK, true, "approved", nil)
	}))
	defer srv.Close()

	dir := t.TempDir()
	seedSession(t, dir, "tok")

	out, errOut, err := runCLI(t, []string{
		"--url", srv.URL, "--config-dir", dir,
		"requests", "approve", "42", "--comment", "budget confirmed",
	})
	if err != nil {
		t.Fatalf("approve error: %v\nstderr:\n%s", err, string(errOut))
	}
	if !bytes.Contains(out, []byte(`"requestId":42`)) && !bytes.Contains(out, []byte(`"requestId": 42`)) {
		t.Fatalf("stdout = %q", string(out))
	}
}

func TestRequestsApprove_ConflictSurfacesBackendMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, false, "request is not pending approval", nil)
	}))
	defer srv.Close()

	dir := t.TempDir()
	seedSession(t, dir, "tok")

	_, errOut, err := runCLI(t, []string{
		"--url", srv.URL, "--config-dir", dir,
		"requests", "reject", "42",
	})
	if err == nil {
		t.Fatal("expected conflict to fail")
	}
	if !bytes.Contains(errOut, []byte("request is not pending approval")) {
		t.Fatalf("stderr = %q", string(errOut))
	}
}

func TestExpiredToken_ClearsSessionAndHintsRelogin(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusUnauthorized, false, "token expired", nil)
	}))
	defer srv.Close()

	dir := t.TempDir()
	seedSession(t, dir, "stale")

	_, errOut, err := runCLI(t, []string{
		"--url", srv.URL, "--config-dir", dir,
		"requests", "list", "--queue", "mine",
	})
	if err == nil {
		t.Fatal("expected 401 to fail the command")
	}
	if !bytes.Contains(errOut, []byte("reqman login")) {
		t.Fatalf("stderr = %q, want re-login hint", string(errOut))
	}

	sess, loadErr := (session.Store{Dir: dir}).Load()
	if loadErr != nil {
		t.Fatalf("load session: %v", loadErr)
	}
	if sess != nil {
		t.Fatal("session must be cleared after a 401")
	}
}

func TestLogout_IsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedSession(t, dir, "tok")

	for i := 0; i < 2; i++ {
		out, errOut, err := runCLI(t, []string{"--config-dir", dir, "logout"})
		if err != nil {
			t.Fatalf("logout #%d error: %v\nstderr:\n%s", i+1, err, string(errOut))
		}
		if !bytes.Contains(out, []byte("loggedOut")) {
			t.Fatalf("stdout = %q", string(out))
		}
	}

	sess, err := (session.Store{Dir: dir}).Load()
	if err != nil || sess != nil {
		t.Fatalf("session after logout = %v, %v", sess, err)
	}
}

func TestRequestsCreate_ValidatesDescriptionLocally(t *testing.T) {
	t.Parallel()

	// No server: the validation failure must short-circuit before any
	// network call.
	dir := t.TempDir()
	seedSession(t, dir, "tok")

	_, errOut, err := runCLI(t, []string{
		"--url", "http://127.0.0.1:1", "--config-dir", dir,
		"requests", "create", "--description", "ab", "--assignee", "2",
	})
	if err == nil {
		t.Fatal("expected short description to fail")
	}
	if !bytes.Contains(errOut, []byte("description must be")) {
		t.Fatalf("stderr = %q", string(errOut))
	}
}

func TestAssignees_ListsDirectory(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/request/assignees" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.URL.Query().Get("count"); got != "100" {
			t.Errorf("count = %q", got)
		}
		writeEnvelope(t, w, http.StatusOK, true, "", []map[string]any{
			{"id": 2, "firstName": "Bo", "lastName": "Berg", "email": "bo@example.com"},
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	seedSession(t, dir, "tok")

	out, errOut, err := runCLI(t, []string{
		"--url", srv.URL, "--config-dir", dir, "assignees",
	})
	if err != nil {
		t.Fatalf("assignees error: %v\nstderr:\n%s", err, string(errOut))
	}

	var resp struct {
		Data []struct {
			ID        int    `json:"id"`
			FirstName string `json:"firstName"`
		} `json:"data"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("unmarshal output: %v\nstdout:\n%s", err, string(out))
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != 2 || resp.Data[0].FirstName != "Bo" {
		t.Fatalf("data = %+v", resp.Data)
	}
}
