package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/todo-go/internal/todo"
)

func TestFormatTask(t *testing.T) {
	created := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	completed := created.Add(time.Hour)

	tests := []struct {
		name    string
		task    todo.Task
		verbose bool
		want    []string
		absent  []string
	}{
		{
			name:   "pending",
			task:   todo.Task{Description: "walk dog", CreatedAt: created},
			want:   []string{"[ ]", "  2", "walk dog"},
			absent: []string{"created"},
		},
		{
			name: "done",
			task: todo.Task{Description: "buy milk", Complete: true, CreatedAt: created, CompletedAt: &completed},
			want: []string{"[x]", "buy milk"},
		},
		{
			name:    "verbose pending",
			task:    todo.Task{Description: "walk dog", CreatedAt: created},
			verbose: true,
			want:    []string{"created   2026-10-18T09:00:00Z"},
			absent:  []string{"completed"},
		},
		{
			name:    "verbose done",
			task:    todo.Task{Description: "buy milk", Complete: true, CreatedAt: created, CompletedAt: &completed},
			verbose: true,
			want:    []string{"completed 2026-10-18T10:00:00Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTask(PlainStyles(), 2, tt.task, tt.verbose)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("FormatTask() = %q, missing %q", got, w)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(got, a) {
					t.Errorf("FormatTask() = %q, should not contain %q", got, a)
				}
			}
		})
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("bytes.Buffer is not a terminal")
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTTY(f) {
		t.Error("regular file is not a terminal")
	}
}

func TestStylesForNonTerminalArePlain(t *testing.T) {
	st := StylesFor(&bytes.Buffer{})
	if got := st.Done.Render("text"); got != "text" {
		t.Errorf("Done.Render() = %q, want plain text", got)
	}
}
