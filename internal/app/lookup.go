package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
)

// LookupLoadedMsg carries a rebuilt option collection.
type LookupLoadedMsg struct {
	Source  string
	Seq     uint64
	Options []Option
	Err     error
}

// Lookup caches the {id, label} projection of a reference entity and pushes
// it to every select that lists the entity as its source.
type Lookup struct {
	Entity  *Entity
	Options []Option

	app *App
	seq uint64
}

// Reload fetches the whole collection, every page of it.
func (l *Lookup) Reload() tea.Cmd {
	l.seq++
	seq := l.seq
	l.app.Busy.Acquire()

	backend, ctx := l.app.backend, l.app.ctx
	path, key, label := l.Entity.Path, l.Entity.Key, l.Entity.Lookup.Label
	return func() tea.Msg {
		records, err := backend.ListAll(ctx, path, nil)
		if err != nil {
			return LookupLoadedMsg{Source: key, Seq: seq, Err: err}
		}
		opts := make([]Option, 0, len(records))
		for _, r := range records {
			opts = append(opts, Option{ID: r.ID(), Label: label(r)})
		}
		return LookupLoadedMsg{Source: key, Seq: seq, Options: opts}
	}
}

func (l *Lookup) apply(msg LookupLoadedMsg) tea.Cmd {
	l.app.Busy.Release()
	if msg.Seq != l.seq {
		return nil
	}
	if msg.Err != nil {
		l.app.log.Warn().Err(msg.Err).Str("source", msg.Source).Msg("lookup reload failed")
		return l.app.Notify(LevelWarning, api.UserMessage(msg.Err, l.Entity.Messages.LoadError))
	}
	l.Options = msg.Options
	l.app.publish(l.Entity.Key, l.Options)
	return nil
}
