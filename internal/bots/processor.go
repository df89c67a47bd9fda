package bots

import "context"

// Completer produces reply text for a prompt. Implementations never fail;
// see CompletionClient.
type Completer interface {
	Complete(ctx context.Context, prompt string) string
}

// Processor decides the reply, if any, for a parsed message.
type Processor struct {
	filter    *CommandFilter
	completer Completer
}

// NewProcessor creates a new message processor.
func NewProcessor(filter *CommandFilter, completer Completer) *Processor {
	return &Processor{
		filter:    filter,
		completer: completer,
	}
}

// HandleMessage returns the reply for msg, or nil when the message should
// go unanswered.
func (p *Processor) HandleMessage(ctx context.Context, msg IncomingMessage) (*OutgoingMessage, error) {
	decision := p.filter.Evaluate(msg.Text)

	switch decision.Action {
	case ActionComplete:
		return &OutgoingMessage{
			RecipientID: msg.SenderID,
			Text:        p.completer.Complete(ctx, decision.Prompt),
			Kind:        ReplyCompletion,
		}, nil

	case ActionInstruct:
		return &OutgoingMessage{
			RecipientID: msg.SenderID,
			Text:        decision.Reply,
			Kind:        ReplyInstruction,
		}, nil

	default:
		return nil, nil
	}
}
