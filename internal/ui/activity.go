package ui

import (
	"strings"
	"sync"
	"time"
)

// ActivityEntry records one task operation performed by a user.
type ActivityEntry struct {
	When   time.Time
	Op     string
	Detail []string
	Err    string
}

func (e ActivityEntry) Text() string {
	s := e.Op
	if len(e.Detail) > 0 {
		s += " " + strings.Join(e.Detail, " ")
	}
	if e.Err != "" {
		s += " (failed: " + e.Err + ")"
	}
	return s
}

// ActivityLog keeps the most recent entries per user, dropping the oldest.
type ActivityLog struct {
	mu     sync.Mutex
	byUser map[string][]ActivityEntry
	max    int
	now    func() time.Time
}

func NewActivityLog(max int) *ActivityLog {
	if max <= 0 {
		max = 200
	}
	return &ActivityLog{byUser: make(map[string][]ActivityEntry), max: max, now: time.Now}
}

func (l *ActivityLog) Append(username, op string, err error, detail ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := ActivityEntry{When: l.now(), Op: op, Detail: append([]string(nil), detail...)}
	if err != nil {
		e.Err = err.Error()
	}
	buf := append(l.byUser[username], e)
	if len(buf) > l.max {
		buf = buf[len(buf)-l.max:]
	}
	l.byUser[username] = buf
}

// Recent returns up to n entries, oldest first. n <= 0 returns everything.
func (l *ActivityLog) Recent(username string, n int) []ActivityEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	buf := l.byUser[username]
	if n <= 0 || n > len(buf) {
		n = len(buf)
	}
	out := make([]ActivityEntry, n)
	copy(out, buf[len(buf)-n:])
	return out
}
