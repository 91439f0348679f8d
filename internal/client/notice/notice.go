// Package notice carries user-visible messages from client controllers to whatever renders them.
package notice

import (
	"fmt"
	"sync"
)

// Kind classifies a notice.
type Kind int

const (
	// AuthRequired means the action needs a signed-in viewer and was not attempted.
	AuthRequired Kind = iota + 1
	// MutationFailed means a remote change failed; any optimistic state was rolled back.
	MutationFailed
	// Info is a plain confirmation.
	Info
)

func (k Kind) String() string {
	switch k {
	case AuthRequired:
		return "auth-required"
	case MutationFailed:
		return "mutation-failed"
	case Info:
		return "info"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Notice is one message for the user.
type Notice struct {
	Kind    Kind
	Action  string // e.g. "vote", "delete selected"
	Message string
	Err     error
}

func (n Notice) String() string {
	if n.Action == "" {
		return n.Message
	}
	return n.Action + ": " + n.Message
}

// Notifier receives notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(Notice)
}

// Func adapts a function to Notifier.
type Func func(Notice)

func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

// NeedAuth builds the standard authentication-required notice.
func NeedAuth(action string) Notice {
	return Notice{Kind: AuthRequired, Action: action, Message: "sign in to continue"}
}

// Failed builds a mutation-failed notice for err.
func Failed(action string, err error) Notice {
	return Notice{Kind: MutationFailed, Action: action, Message: err.Error(), Err: err}
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu  sync.Mutex
	got []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

// All returns a copy of the recorded notices.
func (r *Recorder) All() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.got...)
}

// Count returns how many notices of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.got {
		if x.Kind == k {
			n++
		}
	}
	return n
}
