package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestProgressModelView(t *testing.T) {
	m := newProgressModel("OpenJDK17U-jdk.tar.gz", 2048)

	updated, _ := m.Update(progressMsg{done: 1024, total: 2048, speed: 512})
	view := updated.View()

	for _, want := range []string{"OpenJDK17U-jdk.tar.gz", "1.0 KiB / 2.0 KiB", "512 B/s"} {
		if !strings.Contains(view, want) {
			t.Errorf("view %q does not contain %q", view, want)
		}
	}
}

func TestProgressModelUnknownTotal(t *testing.T) {
	m := newProgressModel("jdk.zip", -1)

	updated, cmd := m.Update(progressMsg{done: 3000, total: -1})
	if cmd != nil {
		t.Error("no animation without a known total")
	}
	if view := updated.View(); !strings.Contains(view, "2.9 KiB") || strings.Contains(view, "%") {
		t.Errorf("unexpected view %q", view)
	}
}

func TestProgressModelFinish(t *testing.T) {
	m := newProgressModel("jdk.zip", 10)

	updated, cmd := m.Update(progressDoneMsg{})
	if cmd == nil {
		t.Fatal("finishing should quit the program")
	}
	if view := updated.View(); !strings.Contains(view, "Downloaded jdk.zip") {
		t.Errorf("unexpected view %q", view)
	}

	updated, _ = m.Update(progressDoneMsg{err: errors.New("connection reset")})
	if view := updated.View(); !strings.Contains(view, "connection reset") {
		t.Errorf("unexpected view %q", view)
	}
}

func TestDownloadProgressFinishWithoutStart(t *testing.T) {
	d := NewDownloadProgress("jdk", nil)
	d.Update(1, 2)
	d.Finish(nil)
}

func TestTaskModelView(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := newTaskModel(ctx, "Scanning for Java installations")
	if view := m.View(); !strings.Contains(view, "Scanning for Java installations") || strings.Contains(view, "cancelling") {
		t.Errorf("unexpected view %q", view)
	}

	m.started = time.Now().Add(-3 * time.Second)
	cancel()
	updated, _ := m.Update(m.spinner.Tick())
	view := updated.View()
	for _, want := range []string{"3s", "cancelling"} {
		if !strings.Contains(view, want) {
			t.Errorf("view %q does not contain %q", view, want)
		}
	}

	updated, cmd := updated.Update(taskDoneMsg{})
	if cmd == nil || updated.View() != "" {
		t.Error("finished task should quit and clear")
	}
}

func TestRunTaskReturnsError(t *testing.T) {
	boom := errors.New("scan failed")
	var out bytes.Buffer

	err := RunTaskOutput(context.Background(), &out, "Locating", func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v; want %v", err, boom)
	}
}

func TestRunTaskPassesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunTaskOutput(ctx, io.Discard, "Scanning", func(ctx context.Context) error {
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v; want context.Canceled", err)
	}
}
