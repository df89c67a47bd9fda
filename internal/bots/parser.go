package bots

import (
	"encoding/json"
	"strings"
)

// bestcrmEvent is the inbound webhook payload. Pointer fields distinguish a
// missing value from an empty one.
type bestcrmEvent struct {
	Data *bestcrmData `json:"data"`
}

type bestcrmData struct {
	SenderPhoneNumber *string         `json:"senderPhoneNumber"`
	Content           *bestcrmContent `json:"content"`
}

type bestcrmContent struct {
	Text *string `json:"text"`
}

// ParseEvent extracts the sender and message text from a raw webhook body.
// The sender is read from data.senderPhoneNumber and the text from
// data.content.text; the text is trimmed. Any missing or mistyped field
// yields a malformed event error.
func ParseEvent(body []byte) (IncomingMessage, error) {
	var event bestcrmEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return IncomingMessage{}, malformedEvent(err, "invalid event JSON")
	}
	if event.Data == nil {
		return IncomingMessage{}, malformedEvent(nil, "event has no data object")
	}
	if event.Data.SenderPhoneNumber == nil {
		return IncomingMessage{}, malformedEvent(nil, "event has no data.senderPhoneNumber")
	}
	sender := strings.TrimSpace(*event.Data.SenderPhoneNumber)
	if sender == "" {
		return IncomingMessage{}, malformedEvent(nil, "data.senderPhoneNumber is empty")
	}
	if event.Data.Content == nil || event.Data.Content.Text == nil {
		return IncomingMessage{}, malformedEvent(nil, "event has no data.content.text")
	}

	return IncomingMessage{
		Platform: PlatformWhatsApp,
		SenderID: sender,
		Text:     strings.TrimSpace(*event.Data.Content.Text),
	}, nil
}
