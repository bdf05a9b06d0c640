package model

import "strings"

// Task is the domain model for a todo entry.
// Field names in the serialized form are part of the storage format.
type Task struct {
	ID          string `json:"id" yaml:"id"`
	IsDone      bool   `json:"isDone" yaml:"isDone"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Field names used when reporting which input was rejected.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
)

// Normalize trims title and description. The returned field is the first
// one left empty after trimming, or "" when both are usable.
func Normalize(title, description string) (string, string, string) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	switch {
	case title == "":
		return title, description, FieldTitle
	case description == "":
		return title, description, FieldDescription
	}
	return title, description, ""
}

// Clone returns a copy of tasks that shares no backing array with the input.
func Clone(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// Stats counts done and pending tasks.
func Stats(tasks []Task) (done, pending int) {
	for _, t := range tasks {
		if t.IsDone {
			done++
		} else {
			pending++
		}
	}
	return
}
