package telegram

// InboundEvent is the single normalized shape every update becomes
// before it reaches the pipeline. Exactly one of Message or Callback is
// set.
type InboundEvent struct {
	UserID   int64
	ChatID   int64
	Language string
	IsAdmin  bool

	Message  *MessageEvent
	Callback *CallbackEvent
}

type MessageEvent struct {
	MessageID int
	Text      string
	Command   string
	Args      string
	Username  string
	FirstName string
}

type CallbackEvent struct {
	CallbackID string
	MessageID  int
	Data       string
}

func (e *InboundEvent) IsCommand() bool {
	return e.Message != nil && e.Message.Command != ""
}
