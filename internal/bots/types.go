package bots

// Platform identifies the messaging platform.
type Platform string

const (
	PlatformWhatsApp Platform = "whatsapp"
)

// IncomingMessage is a chat message extracted from an inbound event.
type IncomingMessage struct {
	Platform Platform
	SenderID string
	Text     string // trimmed
}

// OutgoingMessage is the single reply sent back for an inbound event.
type OutgoingMessage struct {
	RecipientID string
	Text        string
	Kind        ReplyKind
}

// ReplyKind records why a reply was produced.
type ReplyKind string

const (
	ReplyCompletion  ReplyKind = "completion"
	ReplyInstruction ReplyKind = "instruction"
)

// Outcome is the terminal state of one relay, used in logs and metrics.
type Outcome string

const (
	OutcomeMalformed      Outcome = "malformed"
	OutcomeIgnored        Outcome = "ignored"
	OutcomeInstructed     Outcome = "instructed"
	OutcomeReplied        Outcome = "replied"
	OutcomeDispatchFailed Outcome = "dispatch_failed"
	OutcomeFailed         Outcome = "failed"
)
