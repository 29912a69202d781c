// Package transcribe runs the recording through every configured speech
// recognition backend and reports how much they agree.
package transcribe

import "context"

// Word is one recognized word with its time offsets in seconds.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is a single backend's recognition output. Words is empty for
// backends that do not report time offsets.
type Transcript struct {
	Text  string `json:"text"`
	Words []Word `json:"words,omitempty"`
}

// Backend is one speech recognition engine.
type Backend interface {
	ID() string
	Transcribe(ctx context.Context, audio []byte, filename string) (Transcript, error)
}

// Variant is one backend's contribution to the fanout result. A failed
// backend still produces a variant so the judge sees which engines dropped
// out.
type Variant struct {
	BackendID string `json:"backend_id"`
	OK        bool   `json:"ok"`
	Text      string `json:"text"`
	Words     []Word `json:"words,omitempty"`
}
