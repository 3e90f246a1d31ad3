package ui

import (
	"errors"
	"fmt"
	"testing"
)

func TestActivityAppendAndRecentLimit(t *testing.T) {
	l := NewActivityLog(3)
	for i := 0; i < 5; i++ {
		l.Append("alice", "add", nil, fmt.Sprintf("task %d", i))
	}
	got := l.Recent("alice", 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Detail[0] != "task 2" || got[2].Detail[0] != "task 4" {
		t.Fatalf("expected newest three in order, got %v", got)
	}
	if last := l.Recent("alice", 1); len(last) != 1 || last[0].Detail[0] != "task 4" {
		t.Fatalf("Recent(1) = %v", last)
	}
	if len(l.Recent("bob", 5)) != 0 {
		t.Fatalf("users must not share entries")
	}
}

func TestActivityEntryText(t *testing.T) {
	l := NewActivityLog(0)
	l.Append("alice", "toggle", errors.New("quota exceeded"), "abc")
	l.Append("alice", "list", nil)
	got := l.Recent("alice", 0)
	if got[0].Text() != "toggle abc (failed: quota exceeded)" {
		t.Fatalf("unexpected text %q", got[0].Text())
	}
	if got[1].Text() != "list" {
		t.Fatalf("unexpected text %q", got[1].Text())
	}
}
