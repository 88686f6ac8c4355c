package lifecycle

import (
	"errors"
	"testing"

	"reqman-cli/internal/model"
)

func TestNext_ValidTransitions(t *testing.T) {
	cases := []struct {
		from   model.Status
		action Action
		want   model.Status
	}{
		{model.StatusPendingApproval, ActionApprove, model.StatusApproved},
		{model.StatusPendingApproval, ActionReject, model.StatusRejected},
		{model.StatusApproved, ActionClose, model.StatusClosed},
	}
	for _, c := range cases {
		got, err := Next(c.from, c.action)
		if err != nil {
			t.Fatalf("Next(%s, %s): unexpected error: %v", c.from, c.action, err)
		}
		if got != c.want {
			t.Fatalf("Next(%s, %s) = %s, want %s", c.from, c.action, got, c.want)
		}
	}
}

func TestNext_RejectsEverythingElse(t *testing.T) {
	statuses := []model.Status{
		model.StatusPendingApproval,
		model.StatusApproved,
		model.StatusRejected,
		model.StatusClosed,
	}
	valid := map[model.Status]map[Action]bool{
		model.StatusPendingApproval: {ActionApprove: true, ActionReject: true},
		model.StatusApproved:        {ActionClose: true},
	}
	for _, from := range statuses {
		for _, a := range []Action{ActionApprove, ActionReject, ActionClose} {
			if valid[from][a] {
				continue
			}
			_, err := Next(from, a)
			if err == nil {
				t.Fatalf("Next(%s, %s): expected error", from, a)
			}
			var ite InvalidTransitionError
			if !errors.As(err, &ite) {
				t.Fatalf("Next(%s, %s): error %v is not InvalidTransitionError", from, a, err)
			}
			if ite.From != from || ite.Action != a {
				t.Fatalf("InvalidTransitionError fields = %+v", ite)
			}
		}
	}
}

func TestAllowedActions_Policy(t *testing.T) {
	// Manager sees approve/reject only on pending requests.
	if got := AllowedActions(RoleManager, model.StatusPendingApproval); len(got) != 2 {
		t.Fatalf("manager/pending actions = %v", got)
	}
	for _, s := range []model.Status{model.StatusApproved, model.StatusRejected, model.StatusClosed} {
		if got := AllowedActions(RoleManager, s); got != nil {
			t.Fatalf("manager/%s actions = %v, want none", s, got)
		}
	}

	// Assignee sees close only on approved requests.
	if got := AllowedActions(RoleAssignee, model.StatusApproved); len(got) != 1 || got[0] != ActionClose {
		t.Fatalf("assignee/approved actions = %v", got)
	}
	for _, s := range []model.Status{model.StatusPendingApproval, model.StatusRejected, model.StatusClosed} {
		if got := AllowedActions(RoleAssignee, s); got != nil {
			t.Fatalf("assignee/%s actions = %v, want none", s, got)
		}
	}

	// "mine" is view-only in every status.
	for _, s := range []model.Status{model.StatusPendingApproval, model.StatusApproved, model.StatusRejected, model.StatusClosed} {
		if got := AllowedActions(RoleMine, s); got != nil {
			t.Fatalf("mine/%s actions = %v, want none", s, got)
		}
	}
}

func TestTerminal(t *testing.T) {
	if Terminal(model.StatusPendingApproval) || Terminal(model.StatusApproved) {
		t.Fatal("pending/approved must not be terminal")
	}
	if !Terminal(model.StatusRejected) || !Terminal(model.StatusClosed) {
		t.Fatal("rejected/closed must be terminal")
	}
}
