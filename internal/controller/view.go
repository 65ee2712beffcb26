package controller

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry of the chat log. It is never changed once rendered.
type Message struct {
	Sender Sender
	Text   string
}

type StatusKind int

const (
	StatusProgress StatusKind = iota
	StatusSuccess
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusProgress:
		return "progress"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// View is the visible surface the controller writes to. Implementations
// must tolerate calls from any goroutine.
type View interface {
	SetStatus(text string, kind StatusKind)
	SetChatEnabled(enabled bool)
	ClearChatInput()
	AppendMessage(msg Message)
}
