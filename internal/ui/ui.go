package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nsai-uio/IMF-AITool/internal/controller"
	"github.com/nsai-uio/IMF-AITool/internal/logger"
)

// UI is the terminal front end. It implements controller.View; every
// mutation coming from the controller is queued onto the tview event loop.
type UI struct {
	app          *tview.Application
	uploadField  *tview.InputField
	uploadButton *tview.Button
	status       *tview.TextView
	textView     *tview.TextView
	chatInput    *tview.InputField
	sendButton   *tview.Button
	debugConsole *tview.TextView
	mainFlex     *tview.Flex

	// only touched on the event loop
	chatEnabled  bool
	consoleShown bool

	// queue runs f on the event loop and redraws.
	queue func(f func())

	ctrl        *controller.Controller
	ctx         context.Context
	cancel      context.CancelFunc
	localLogger *logger.Logger
}

func New(dev bool, initialFile string) *UI {
	u := &UI{
		app:          tview.NewApplication(),
		consoleShown: dev,
	}
	u.app.EnablePaste(true)
	u.app.EnableMouse(true)
	u.queue = func(f func()) { u.app.QueueUpdateDraw(f) }

	u.debugConsole = initDebugConsole()
	u.textView = initChatViewer()
	u.status = tview.NewTextView().SetDynamicColors(true)
	u.uploadField = initUploadField(initialFile)
	u.uploadButton = tview.NewButton("Upload")
	u.chatInput = initChatInput()
	u.sendButton = tview.NewButton("Send")

	u.chatInput.SetDisabled(true)
	u.sendButton.SetDisabled(true)

	uploadRow := tview.NewFlex().
		AddItem(u.uploadField, 0, 1, true).
		AddItem(u.uploadButton, 10, 0, false)
	chatRow := tview.NewFlex().
		AddItem(u.chatInput, 0, 1, false).
		AddItem(u.sendButton, 8, 0, false)

	subFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(uploadRow, 3, 0, true).
		AddItem(u.status, 1, 0, false).
		AddItem(u.textView, 0, 1, false).
		AddItem(chatRow, 3, 0, false)
	u.mainFlex = tview.NewFlex().
		AddItem(subFlex, 0, 2, true)

	if dev {
		u.mainFlex.AddItem(u.debugConsole, 0, 1, false)
	}

	return u
}

func initChatViewer() *tview.TextView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	textView.SetTitle("Conversation").SetBorder(true)
	textView.SetScrollable(true)
	textView.ScrollToEnd()
	return textView
}

func initUploadField(initialFile string) *tview.InputField {
	field := tview.NewInputField().
		SetPlaceholder("path/to/document.pdf").
		SetText(initialFile)
	field.SetTitle("Document").SetBorder(true)
	return field
}

func initChatInput() *tview.InputField {
	input := tview.NewInputField().
		SetPlaceholder("Upload a document to start asking questions")
	input.SetTitle("Question").SetBorder(true)
	return input
}

func initDebugConsole() *tview.TextView {
	console := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	console.SetTitle("Debugger").SetBorder(true)
	console.ScrollToEnd()
	return console
}

// DebugConsole returns a writer for the logger that appends to the debug
// console from any goroutine.
func (u *UI) DebugConsole() *ConsoleWriter {
	return &ConsoleWriter{app: u.app, view: u.debugConsole}
}

// Bind attaches the controller the forms submit to. It must be called before
// Run.
func (u *UI) Bind(ctrl *controller.Controller) {
	u.ctrl = ctrl
	u.localLogger = logger.NewLogger("views")
}

// Run blocks until the user quits or ctx is cancelled.
func (u *UI) Run(ctx context.Context) error {
	if u.ctrl == nil {
		return fmt.Errorf("ui: no controller bound")
	}
	u.ctx, u.cancel = context.WithCancel(ctx)
	defer u.cancel()

	go func() {
		<-u.ctx.Done()
		u.app.Stop()
	}()

	u.setInputCapture()

	return u.app.SetRoot(u.mainFlex, true).SetFocus(u.uploadField).Run()
}

func (u *UI) setInputCapture() {
	u.uploadField.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			u.submitUpload()
		}
	})
	u.uploadButton.SetSelectedFunc(u.submitUpload)

	u.chatInput.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			u.submitChat()
		case tcell.KeyEscape:
			if u.textView.GetText(false) != "" {
				u.app.SetFocus(u.textView)
			}
		}
	})
	u.sendButton.SetSelectedFunc(u.submitChat)

	u.textView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEnter && u.chatEnabled {
			u.app.SetFocus(u.chatInput)
			return nil
		}
		return event
	})

	u.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			u.cycleFocus(1)
			return nil
		case tcell.KeyBacktab:
			u.cycleFocus(-1)
			return nil
		case tcell.KeyF2:
			u.toggleDebugConsole()
			return nil
		}
		return event
	})
}

func (u *UI) focusOrder() []tview.Primitive {
	items := []tview.Primitive{u.uploadField, u.uploadButton}
	if u.chatEnabled {
		items = append(items, u.chatInput, u.sendButton)
	}
	return append(items, u.textView)
}

func (u *UI) cycleFocus(step int) {
	items := u.focusOrder()
	current := u.app.GetFocus()
	idx := 0
	for i, p := range items {
		if p == current {
			idx = i
			break
		}
	}
	u.app.SetFocus(items[nextIndex(idx, step, len(items))])
}

func (u *UI) submitUpload() {
	path := strings.TrimSpace(u.uploadField.GetText())
	if u.runCommand(path, u.uploadField) {
		return
	}
	sel := newFileSelection(path)
	if sel != nil {
		u.localLogger.Info("Upload requested: ", path)
	}
	go u.ctrl.HandleUploadSubmit(u.ctx, sel)
}

func (u *UI) submitChat() {
	content := u.chatInput.GetText()
	if u.runCommand(strings.TrimSpace(content), u.chatInput) {
		return
	}
	go u.ctrl.HandleChatSubmit(u.ctx, content)
}

// runCommand handles the local commands. They work in the document field
// too, since the question field stays disabled until an upload succeeds.
func (u *UI) runCommand(text string, field *tview.InputField) bool {
	switch text {
	case "/help":
		field.SetText("")
		u.listHelp()
	case "/bye", "/quit":
		u.quitApp()
	case "/debug":
		field.SetText("")
		u.toggleDebugConsole()
	default:
		return false
	}
	return true
}

func (u *UI) toggleDebugConsole() {
	if u.consoleShown {
		u.mainFlex.RemoveItem(u.debugConsole)
		fmt.Fprintf(u.textView, "\nDebug console disabled\n")
	} else {
		u.mainFlex.AddItem(u.debugConsole, 0, 1, false)
		fmt.Fprintf(u.textView, "\nDebug console enabled\n")
	}
	u.consoleShown = !u.consoleShown
	logger.SetDev(u.consoleShown)
	u.textView.ScrollToEnd()
}

func (u *UI) quitApp() {
	fmt.Fprintf(u.textView, "Bye bye\n")
	u.localLogger.Info("Exiting by command.")
	u.cancel()
}

func (u *UI) listHelp() {
	fmt.Fprint(u.textView, "[green::]Bot:[-]\n")
	fmt.Fprint(u.textView, "Here are some commands you can use in the document or question field:\n")
	fmt.Fprint(u.textView, "- /help: Display this help message\n")
	fmt.Fprint(u.textView, "- /bye or /quit: Exit the application\n")
	fmt.Fprint(u.textView, "- /debug or F2: Toggle the debug console\n")
	fmt.Fprint(u.textView, "- Tab / Shift+Tab: Move between fields, Esc: scroll the conversation\n\n")
	u.textView.ScrollToEnd()
}

// SetStatus implements controller.View.
func (u *UI) SetStatus(text string, kind controller.StatusKind) {
	u.queue(func() {
		u.status.SetText(statusText(text, kind))
	})
}

// SetChatEnabled implements controller.View.
func (u *UI) SetChatEnabled(enabled bool) {
	u.queue(func() {
		u.chatEnabled = enabled
		u.chatInput.SetDisabled(!enabled)
		u.sendButton.SetDisabled(!enabled)
		if enabled {
			u.chatInput.SetPlaceholder("Ask a question about the document")
		} else {
			u.chatInput.SetPlaceholder("Upload a document to start asking questions")
		}
	})
}

// ClearChatInput implements controller.View.
func (u *UI) ClearChatInput() {
	u.queue(func() {
		u.chatInput.SetText("")
	})
}

// AppendMessage implements controller.View.
func (u *UI) AppendMessage(msg controller.Message) {
	u.queue(func() {
		fmt.Fprint(u.textView, formatMessage(msg))
		u.textView.ScrollToEnd()
	})
}
