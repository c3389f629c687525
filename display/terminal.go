package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cancelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Terminal is an OutputSurface writing the streamed answer to w.
type Terminal struct {
	mu        sync.Mutex
	w         io.Writer
	indicator bool
	started   bool
}

// NewTerminal returns a Terminal writing to w.
func NewTerminal(w io.Writer) *Terminal { return &Terminal{w: w} }

// Prompt echoes the prompt and starts the assistant line.
func (t *Terminal) Prompt(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = false
	fmt.Fprintf(t.w, "%s%s\n", userPrompt, text)
}

// DisplayStream writes one chunk of the answer.
func (t *Terminal) DisplayStream(text string, final bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if final {
		fmt.Fprint(t.w, "\n\n")
		return
	}
	if !t.started {
		fmt.Fprint(t.w, assistantPrompt)
		t.started = true
	}
	fmt.Fprint(t.w, text)
}

// ShowReasoningIndicator prints a dim thinking marker once.
func (t *Terminal) ShowReasoningIndicator() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.indicator {
		return
	}
	t.indicator = true
	fmt.Fprintln(t.w, dimStyle.Render("  thinking…"))
}

// HideReasoningIndicator clears the indicator state.
func (t *Terminal) HideReasoningIndicator() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indicator = false
}

// ShowCancelled prints the cancellation notice.
func (t *Terminal) ShowCancelled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indicator = false
	fmt.Fprintf(t.w, "\n%s\n", cancelStyle.Render("  ✗ request cancelled"))
}
