package httpapi

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/mmichie/pipes/pkg/pipeline"
)

// startedAt is reported as the creation time of every pipeline model
var startedAt = time.Now().Unix()

type modelList struct {
	Object string  `json:"object"`
	Data   []model `json:"data"`
}

type model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
	Name    string `json:"name"`
	Ready   bool   `json:"ready"`
	Index   int64  `json:"index"`
}

// chatRequest holds the fields the server routes on. The whole body is
// also passed to the pipeline as an opaque map.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	// Stream is accepted for compatibility; replies are never streamed.
	Stream bool `json:"stream"`
}

type chatMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// text flattens a message content that is either a string or a list of parts
func (m chatMessage) text() string {
	if len(m.Content) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(m.Content, &s); err == nil {
		return s
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(m.Content, &parts); err != nil {
		return ""
	}
	var b strings.Builder
	for _, p := range parts {
		if p.Type == "text" {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Index        int              `json:"index"`
	Message      pipeline.Message `json:"message"`
	FinishReason *string          `json:"finish_reason"`
}
