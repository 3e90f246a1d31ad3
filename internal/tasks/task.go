package tasks

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyTitle is returned by NewTask for blank titles.
var ErrEmptyTitle = errors.New("please enter a valid task title")

// Task is one entry of a task list.
type Task struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// NewTask builds a not-yet-done task with a fresh id and a title that is
// safe to place into markup.
func NewTask(title string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}
	return Task{ID: NewID(), Title: SanitizeTitle(title), Done: false}, nil
}

// NewID returns an identifier unique across stores.
func NewID() string {
	return uuid.NewString()
}

// SanitizeTitle escapes markup characters so the title renders as text.
func SanitizeTitle(s string) string {
	return html.EscapeString(s)
}

// Summary counts active and done tasks.
type Summary struct {
	Active int     `json:"active"`
	Done   int     `json:"done"`
	Pct    float64 `json:"pct"`
}

func Summarize(list []Task) Summary {
	var s Summary
	for _, t := range list {
		if t.Done {
			s.Done++
		} else {
			s.Active++
		}
	}
	if s.Done > 0 {
		s.Pct = float64(s.Done) / float64(s.Active+s.Done) * 100
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("Active: %d · Done: %d · Done %%: %.1f%%", s.Active, s.Done, s.Pct)
}

// Partition splits a snapshot into active and done tasks, keeping order.
func Partition(list []Task) (active, done []Task) {
	for _, t := range list {
		if t.Done {
			done = append(done, t)
		} else {
			active = append(active, t)
		}
	}
	return active, done
}
