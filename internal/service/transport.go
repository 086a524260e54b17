package service

import "context"

// Transport is the narrow capability the core needs from the chat network:
// fire-and-confirm text delivery to a chat. Inbound updates reach the core
// through BindingService.HandleInbound, driven by the transport's own loop.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) error
}
