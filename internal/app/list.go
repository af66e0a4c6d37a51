package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
)

// PageSize is the fixed page size of every list.
const PageSize = 20

// ListLoadedMsg carries the result of a list fetch.
type ListLoadedMsg struct {
	Entity string
	Seq    uint64
	Page   int
	Result *api.ListResult
	Err    error
}

// ListView keeps one entity's list in sync with the server: filters, rows
// and pager.
//
// Every Refresh is numbered. Only the response to the latest one is applied;
// older responses are dropped when they arrive, so the view always matches
// the most recently issued filter and page.
type ListView struct {
	Entity     *Entity
	Filters    []*Control
	Records    []api.Record
	Table      Table
	Pagination api.Pagination
	Pager      []PageControl
	Loaded     bool

	app *App
	seq uint64
}

func newListView(a *App, e *Entity) *ListView {
	return &ListView{
		Entity:  e,
		Filters: newControls(e.Filters),
		Table:   RenderTable(e.TableSpec, nil),
		app:     a,
	}
}

// Filter returns the filter control with the given key, or nil.
func (lv *ListView) Filter(key string) *Control {
	for _, c := range lv.Filters {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// FilterValues reads the filter controls as they are right now.
func (lv *ListView) FilterValues() map[string]string {
	out := make(map[string]string, len(lv.Filters))
	for _, c := range lv.Filters {
		if v := c.queryValue(); v != "" {
			out[c.Key] = v
		}
	}
	return out
}

// ClearFilters resets every filter control.
func (lv *ListView) ClearFilters() {
	for _, c := range lv.Filters {
		c.Reset()
	}
}

// CurrentPage is the page on screen, 1 before the first load.
func (lv *ListView) CurrentPage() int {
	if lv.Loaded && lv.Pagination.Page > 0 {
		return lv.Pagination.Page
	}
	return 1
}

// Record finds a loaded record by id.
func (lv *ListView) Record(id string) api.Record {
	for _, r := range lv.Records {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

// Refresh loads page with the current filters. page <= 0 reloads the
// current page.
func (lv *ListView) Refresh(page int) tea.Cmd {
	if page <= 0 {
		page = lv.CurrentPage()
	}
	lv.seq++
	seq := lv.seq
	q := api.Query{Page: page, PerPage: PageSize, Filters: lv.FilterValues()}
	lv.app.Busy.Acquire()

	backend, ctx := lv.app.backend, lv.app.ctx
	path, key := lv.Entity.Path, lv.Entity.Key
	return func() tea.Msg {
		res, err := backend.List(ctx, path, q)
		return ListLoadedMsg{Entity: key, Seq: seq, Page: page, Result: res, Err: err}
	}
}

func (lv *ListView) apply(msg ListLoadedMsg) tea.Cmd {
	lv.app.Busy.Release()

	if msg.Seq != lv.seq {
		lv.app.log.Debug().
			Str("entity", msg.Entity).
			Uint64("seq", msg.Seq).
			Uint64("latest", lv.seq).
			Msg("dropping stale list response")
		return nil
	}

	if msg.Err != nil {
		lv.app.log.Warn().Err(msg.Err).Str("entity", msg.Entity).Int("page", msg.Page).Msg("list refresh failed")
		return lv.app.Notify(LevelError, api.UserMessage(msg.Err, lv.Entity.Messages.LoadError))
	}

	lv.Records = msg.Result.Records
	lv.Pagination = msg.Result.Pagination
	lv.Table = RenderTable(lv.Entity.TableSpec, lv.Records)
	lv.Pager = RenderPager(lv.Pagination, lv.Refresh)
	lv.Loaded = true

	// A delete can empty the last page; step back to the new last page.
	if len(lv.Records) == 0 && msg.Page > 1 && lv.Pagination.Pages >= 1 && lv.Pagination.Pages < msg.Page {
		return lv.Refresh(lv.Pagination.Pages)
	}
	return nil
}
