// Package workspace holds the per-user conversation state for the
// current session. Conversations live in memory only; the database is
// used for accounts and inference jobs, never for chat history.
package workspace

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/virelio/ai-workspace/internal/catalog"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation. Immutable once appended.
type Message struct {
	ID          string            `json:"id"`
	Content     string            `json:"content"`
	Role        Role              `json:"role"`
	Timestamp   time.Time         `json:"timestamp"`
	Attachments []string          `json:"attachments,omitempty"`
	MediaURL    string            `json:"media_url,omitempty"`
	MediaType   catalog.MediaType `json:"media_type,omitempty"`
	ModelID     string            `json:"model_id,omitempty"`
}

// Conversation is a titled, ordered message sequence. LastMessage and
// Timestamp always mirror the newest appended message.
type Conversation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	LastMessage string    `json:"last_message"`
	Timestamp   time.Time `json:"timestamp"`
	Messages    []Message `json:"messages"`

	// Busy is set while a reply for this conversation is outstanding.
	Busy bool `json:"busy"`

	// seq counts outgoing sends; replies carrying an older seq are stale.
	seq uint64
}

func (c *Conversation) clone() Conversation {
	out := *c
	out.Messages = append([]Message(nil), c.Messages...)
	return out
}

func newID() string {
	return ulid.Make().String()
}

const titleLimit = 30

// titleFromSeed derives an implicit title from the first message.
func titleFromSeed(content string) string {
	r := []rune(content)
	if len(r) > titleLimit {
		return string(r[:titleLimit]) + "..."
	}
	return content
}
