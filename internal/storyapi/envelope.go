package storyapi

import "encoding/json"

// envelope is the {status, body} wrapper the API puts around responses.
type envelope[T any] struct {
	Status  int     `json:"status"`
	Message string  `json:"message,omitempty"`
	Body    body[T] `json:"body"`
}

type body[T any] struct {
	Data T `json:"data"`
}

// envelopeMessage extracts the message of an error envelope, if any.
func envelopeMessage(raw []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Message
}
