package connection

import "context"

// Handler receives decoded messages. It runs on the manager's loop
// goroutine, so a slow handler delays reading the next frame.
type Handler interface {
	HandleMessage(ctx context.Context, msg Message)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(context.Context, Message)

func (f HandlerFunc) HandleMessage(ctx context.Context, msg Message) {
	f(ctx, msg)
}

// NopHandler discards every message.
var NopHandler Handler = HandlerFunc(func(context.Context, Message) {})
