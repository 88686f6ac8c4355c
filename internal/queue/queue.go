// Package queue holds the view model behind every role-scoped request
// list: the current page, total count, loading flag and error, plus the
// fetch bookkeeping that keeps the visible grid consistent with server
// state. The model performs no I/O itself; the owner issues the fetch and
// feeds the outcome back through ApplyResult.
package queue

import (
	"reqman-cli/internal/lifecycle"
	"reqman-cli/internal/model"
)

// Model owns its page/loading/error state exclusively; no other component
// mutates it. One Model per visible queue.
type Model struct {
	Role     lifecycle.Role
	Page     int
	PageSize int

	Records []model.Request
	Total   int
	Loading bool
	Err     error

	// loaded becomes true after the first successful fetch. First-load
	// failures show an empty error state; later failures keep the last
	// good page visible so the user can retry without losing context.
	loaded bool

	// seq tags the most recently issued fetch. Responses carrying an
	// older tag lost the race to a newer fetch (page change, refetch
	// after mutation) and are discarded instead of clobbering newer
	// state with stale records.
	seq int
}

func New(role lifecycle.Role, pageSize int) Model {
	if pageSize < 1 {
		pageSize = 1
	}
	return Model{Role: role, Page: 1, PageSize: pageSize, Records: []model.Request{}}
}

// StartFetch marks a fetch as in flight and returns its tag. Any earlier
// in-flight fetch is implicitly abandoned: its result will no longer match
// the current tag.
func (m *Model) StartFetch() int {
	m.seq++
	m.Loading = true
	return m.seq
}

// SetPage moves to the given page (clamped to >= 1) and starts a fetch,
// returning its tag. The previously displayed records stay visible while
// the new page loads.
func (m *Model) SetPage(page int) int {
	if page < 1 {
		page = 1
	}
	m.Page = page
	return m.StartFetch()
}

// Invalidate refetches the current (page, pageSize). Called after every
// successful mutation: the refetch is the single source of truth, the
// local list is never patched optimistically.
func (m *Model) Invalidate() int {
	return m.StartFetch()
}

// ApplyResult folds a fetch outcome into the model. It reports whether the
// result was applied; stale results (tag older than the latest fetch) are
// dropped wholesale.
func (m *Model) ApplyResult(tag int, page model.QueuePage, err error) bool {
	if tag != m.seq {
		return false
	}
	m.Loading = false
	if err != nil {
		m.Err = err
		if !m.loaded {
			m.Records = []model.Request{}
			m.Total = 0
		}
		return true
	}

	// Replace records and total together; a partially updated page is
	// never observable.
	records := page.Records
	if records == nil {
		records = []model.Request{}
	}
	m.Records = records
	m.Total = page.Total
	m.Err = nil
	m.loaded = true
	return true
}

// FirstLoad reports whether no fetch has succeeded yet, i.e. whether the
// view should show a full-screen loading or error state instead of a grid.
func (m Model) FirstLoad() bool { return !m.loaded }

// PageCount derives the number of pages from the last reported total.
func (m Model) PageCount() int {
	if m.Total <= 0 {
		return 1
	}
	n := (m.Total + m.PageSize - 1) / m.PageSize
	if n < 1 {
		n = 1
	}
	return n
}

// ActionsFor returns the controls to offer for a request in this queue.
func (m Model) ActionsFor(r model.Request) []lifecycle.Action {
	return lifecycle.AllowedActions(m.Role, r.Status)
}
