package mailer

import "context"

// Transport delivers a composed message.
type Transport interface {
	// Name identifies the transport in logs and metrics.
	Name() string

	// Send delivers the message. It returns when the message has been
	// accepted by the remote side or when ctx is done.
	Send(ctx context.Context, msg *Message) error
}
