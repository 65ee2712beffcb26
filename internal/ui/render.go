package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rivo/tview"

	"github.com/nsai-uio/IMF-AITool/internal/controller"
)

// formatMessage renders a chat entry. The text is escaped so colour tags in
// questions or answers are shown literally.
func formatMessage(msg controller.Message) string {
	switch msg.Sender {
	case controller.SenderUser:
		return fmt.Sprintf("[red::]You:[-]\n%s\n\n", tview.Escape(msg.Text))
	default:
		return fmt.Sprintf("[green::]Bot:[-]\n%s\n\n", tview.Escape(msg.Text))
	}
}

func statusText(text string, kind controller.StatusKind) string {
	var color string
	switch kind {
	case controller.StatusSuccess:
		color = "green"
	case controller.StatusError:
		color = "red"
	default:
		color = "orange"
	}
	return fmt.Sprintf("[%s]%s[-]", color, tview.Escape(text))
}

// newFileSelection turns the upload field into a selection. An empty path
// means nothing was selected.
func newFileSelection(path string) *controller.FileSelection {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return &controller.FileSelection{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

func nextIndex(current, step, n int) int {
	return ((current+step)%n + n) % n
}

// ConsoleWriter appends log output to the debug console on the event loop.
type ConsoleWriter struct {
	app  *tview.Application
	view *tview.TextView
}

func (w *ConsoleWriter) Write(p []byte) (int, error) {
	text := string(p)
	w.app.QueueUpdateDraw(func() {
		fmt.Fprint(w.view, text)
		w.view.ScrollToEnd()
	})
	return len(p), nil
}
