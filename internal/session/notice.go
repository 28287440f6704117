package session

import (
	"sync"
	"time"
)

type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeSuccess NoticeLevel = "success"
)

type Notice struct {
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Notifier holds at most one transient message per level. Posting replaces
// the previous message and cancels its timer; the timer clears only the
// message it was scheduled for.
type Notifier struct {
	mu      sync.Mutex
	current map[NoticeLevel]*Notice
	timers  map[NoticeLevel]*time.Timer
	ttl     map[NoticeLevel]time.Duration
}

func NewNotifier(errorTTL, successTTL time.Duration) *Notifier {
	return &Notifier{
		current: make(map[NoticeLevel]*Notice),
		timers:  make(map[NoticeLevel]*time.Timer),
		ttl: map[NoticeLevel]time.Duration{
			NoticeError:   errorTTL,
			NoticeSuccess: successTTL,
		},
	}
}

func (n *Notifier) Post(level NoticeLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked(level)

	ttl := n.ttl[level]
	notice := &Notice{Level: level, Message: message, ExpiresAt: time.Now().Add(ttl)}
	n.current[level] = notice

	n.timers[level] = time.AfterFunc(ttl, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.current[level] == notice {
			delete(n.current, level)
			delete(n.timers, level)
		}
	})
}

// Dismiss clears every visible notice and cancels pending timers.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for level := range n.current {
		n.stopLocked(level)
	}
}

// Current returns copies of the visible notices, errors first.
func (n *Notifier) Current() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []Notice
	for _, level := range []NoticeLevel{NoticeError, NoticeSuccess} {
		if notice, ok := n.current[level]; ok {
			out = append(out, *notice)
		}
	}
	return out
}

func (n *Notifier) stopLocked(level NoticeLevel) {
	if t, ok := n.timers[level]; ok {
		t.Stop()
		delete(n.timers, level)
	}
	delete(n.current, level)
}
