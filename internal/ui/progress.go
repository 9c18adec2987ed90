package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"jdkprov/internal/theme"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

const (
	padding        = 2
	updateInterval = 100 * time.Millisecond
)

type progressMsg struct {
	done  int64
	total int64
	speed float64 // bytes per second
}

type progressDoneMsg struct{ err error }

// progressModel renders a download progress bar
type progressModel struct {
	label    string
	progress progress.Model
	done     int64
	total    int64
	speed    float64
	err      error
	finished bool
}

func newProgressModel(label string, total int64) progressModel {
	return progressModel{
		label: label,
		progress: progress.New(
			progress.WithGradient(string(theme.Secondary), string(theme.Primary)),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		total: total,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case progressMsg:
		m.done = msg.done
		m.speed = msg.speed
		if msg.total > 0 {
			m.total = msg.total
		}
		if m.total <= 0 {
			return m, nil
		}
		return m, m.progress.SetPercent(float64(m.done) / float64(m.total))

	case progressDoneMsg:
		m.err = msg.err
		m.finished = true
		return m, tea.Quit

	case progress.FrameMsg:
		updated, cmd := m.progress.Update(msg)
		m.progress = updated.(progress.Model)
		return m, cmd

	default:
		return m, nil
	}
}

func (m progressModel) View() string {
	if m.finished {
		if m.err != nil {
			return theme.ErrorMessage("Download failed: "+m.err.Error()) + "\n"
		}
		return theme.SuccessMessage(fmt.Sprintf("Downloaded %s (%s)", m.label, humanize.IBytes(uint64(m.done)))) + "\n"
	}

	pad := strings.Repeat(" ", padding)
	speed := humanize.IBytes(uint64(m.speed)) + "/s"

	var info string
	if m.total > 0 {
		info = fmt.Sprintf("%s / %s (%.0f%%) - %s",
			humanize.IBytes(uint64(m.done)), humanize.IBytes(uint64(m.total)),
			m.progress.Percent()*100, speed)
	} else {
		info = fmt.Sprintf("%s - %s", humanize.IBytes(uint64(m.done)), speed)
	}

	return "\n" +
		pad + theme.LabelStyle.Render(m.label) + "\n" +
		pad + m.progress.View() + "\n" +
		pad + theme.Faint.Render(info) + "\n"
}

// DownloadProgress renders downloads as a terminal progress bar.
// It satisfies installer.ProgressListener; one value serves one download at a time.
type DownloadProgress struct {
	label string
	out   io.Writer

	mu       sync.Mutex
	program  *tea.Program
	finished chan struct{}
	started  time.Time
	lastSent time.Time
}

// NewDownloadProgress creates a progress bar labelled with label writing to out (stderr when nil)
func NewDownloadProgress(label string, out io.Writer) *DownloadProgress {
	if out == nil {
		out = os.Stderr
	}
	return &DownloadProgress{label: label, out: out}
}

// Start launches the progress program
func (d *DownloadProgress) Start(total int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.started = time.Now()
	d.lastSent = time.Time{}
	d.finished = make(chan struct{})
	d.program = tea.NewProgram(newProgressModel(d.label, total),
		tea.WithOutput(d.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	program, finished := d.program, d.finished
	go func() {
		defer close(finished)
		_, _ = program.Run()
	}()
}

// Update forwards progress, at most once per update interval until the download completes
func (d *DownloadProgress) Update(done, total int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.program == nil {
		return
	}
	now := time.Now()
	if now.Sub(d.lastSent) < updateInterval && (total <= 0 || done < total) {
		return
	}
	d.lastSent = now

	var speed float64
	if elapsed := now.Sub(d.started).Seconds(); elapsed > 0 {
		speed = float64(done) / elapsed
	}
	d.program.Send(progressMsg{done: done, total: total, speed: speed})
}

// Finish stops the progress program and waits for its final frame
func (d *DownloadProgress) Finish(err error) {
	d.mu.Lock()
	program, finished := d.program, d.finished
	d.program = nil
	d.mu.Unlock()

	if program == nil {
		return
	}
	program.Send(progressDoneMsg{err: err})
	<-finished
}
