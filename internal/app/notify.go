package app

import "time"

// ToastTTL is how long a notification stays on screen.
const ToastTTL = 5 * time.Second

// Level is a notification severity.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
	LevelWarning
	LevelInfo
)

// Title is the heading shown above a toast.
func (l Level) Title() string {
	switch l {
	case LevelSuccess:
		return "Sucesso"
	case LevelError:
		return "Erro"
	case LevelWarning:
		return "Atenção"
	default:
		return "Informação"
	}
}

// Toast is a transient notification.
type Toast struct {
	ID      int
	Level   Level
	Message string
}

// ToastExpiredMsg removes a toast once its TTL has passed.
type ToastExpiredMsg struct{ ID int }

// Busy counts outstanding network calls; the UI shows a spinner while it is
// non-zero.
type Busy struct {
	n int
}

func (b *Busy) Acquire() { b.n++ }

func (b *Busy) Release() {
	if b.n > 0 {
		b.n--
	}
}

func (b *Busy) Active() bool { return b.n > 0 }

// Count is the number of calls in flight.
func (b *Busy) Count() int { return b.n }
