package workspace

import (
	"sync"
	"time"

	"github.com/virelio/ai-workspace/internal/catalog"
)

// RequestTag identifies one outstanding inference request. Replies are
// applied only when the conversation still exists and the tag is not
// superseded by a newer send.
type RequestTag struct {
	ConversationID string `json:"conversation_id"`
	Seq            uint64 `json:"seq"`
}

// Store holds one user's conversations, most-recent-first by last
// activity, with at most one active conversation. All mutations are
// atomic per call.
type Store struct {
	mu            sync.Mutex
	conversations []*Conversation
	activeID      string
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) find(id string) (int, *Conversation) {
	for i, c := range s.conversations {
		if c.ID == id {
			return i, c
		}
	}
	return -1, nil
}

func (s *Store) moveToFront(i int) {
	if i <= 0 {
		return
	}
	c := s.conversations[i]
	copy(s.conversations[1:i+1], s.conversations[:i])
	s.conversations[0] = c
}

// CreateConversation allocates a new empty conversation, prepends it
// and marks it active. Always succeeds.
func (s *Store) CreateConversation() Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &Conversation{
		ID:        newID(),
		Title:     "New Workspace",
		Timestamp: time.Now(),
		Messages:  []Message{},
	}
	s.conversations = append([]*Conversation{c}, s.conversations...)
	s.activeID = c.ID
	return c.clone()
}

// SendMessage appends a user message to the active conversation,
// creating one implicitly when none is active, and returns the updated
// conversation together with the tag for the outstanding reply. The
// user message is visible before any reply resolves.
func (s *Store) SendMessage(content string, attachments []string) (Conversation, RequestTag) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conv *Conversation
	if s.activeID != "" {
		_, conv = s.find(s.activeID)
	}
	if conv == nil {
		conv = &Conversation{
			ID:        newID(),
			Title:     titleFromSeed(content),
			Timestamp: time.Now(),
			Messages:  []Message{},
		}
		s.conversations = append([]*Conversation{conv}, s.conversations...)
		s.activeID = conv.ID
	}

	now := time.Now()
	conv.Messages = append(conv.Messages, Message{
		ID:          newID(),
		Content:     content,
		Role:        RoleUser,
		Timestamp:   now,
		Attachments: attachments,
	})
	conv.LastMessage = content
	conv.Timestamp = now
	conv.Busy = true
	conv.seq++

	if i, _ := s.find(conv.ID); i > 0 {
		s.moveToFront(i)
	}

	return conv.clone(), RequestTag{ConversationID: conv.ID, Seq: conv.seq}
}

// ApplyAssistantReply appends an assistant message for the given tag.
// Replies for deleted conversations or superseded sends are dropped;
// the second return reports whether the reply was applied.
func (s *Store) ApplyAssistantReply(tag RequestTag, content, modelID string, mediaType catalog.MediaType, mediaURL string) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, conv := s.find(tag.ConversationID)
	if conv == nil || tag.Seq < conv.seq {
		return Conversation{}, false
	}

	now := time.Now()
	conv.Messages = append(conv.Messages, Message{
		ID:        newID(),
		Content:   content,
		Role:      RoleAssistant,
		Timestamp: now,
		MediaType: mediaType,
		MediaURL:  mediaURL,
		ModelID:   modelID,
	})
	conv.LastMessage = content
	conv.Timestamp = now
	conv.Busy = false
	s.moveToFront(i)

	return conv.clone(), true
}

// ApplyAssistantError folds a failure into the conversation as an
// assistant message. Same guard as ApplyAssistantReply.
func (s *Store) ApplyAssistantError(tag RequestTag, errText string) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, conv := s.find(tag.ConversationID)
	if conv == nil || tag.Seq < conv.seq {
		return Conversation{}, false
	}

	now := time.Now()
	conv.Messages = append(conv.Messages, Message{
		ID:        newID(),
		Content:   errText,
		Role:      RoleAssistant,
		Timestamp: now,
	})
	conv.LastMessage = errText
	conv.Timestamp = now
	conv.Busy = false
	s.moveToFront(i)

	return conv.clone(), true
}

// DeleteConversation removes a conversation; deleting the active one
// clears the active pointer.
func (s *Store) DeleteConversation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, conv := s.find(id)
	if conv == nil {
		return false
	}
	s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
	if s.activeID == id {
		s.activeID = ""
	}
	return true
}

// RenameConversation updates only the title of the matching
// conversation.
func (s *Store) RenameConversation(id, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, conv := s.find(id)
	if conv == nil {
		return false
	}
	conv.Title = title
	return true
}

// SetActive selects the conversation the next send lands in.
func (s *Store) SetActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, conv := s.find(id); conv == nil {
		return false
	}
	s.activeID = id
	return true
}

func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// List returns snapshots in most-recent-first order.
func (s *Store) List() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, c.clone())
	}
	return out
}

func (s *Store) Get(id string) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, conv := s.find(id)
	if conv == nil {
		return Conversation{}, false
	}
	return conv.clone(), true
}

// Manager hands out one Store per signed-in user.
type Manager struct {
	mu     sync.Mutex
	stores map[uint64]*Store
}

func NewManager() *Manager {
	return &Manager{stores: make(map[uint64]*Store)}
}

func (m *Manager) ForUser(userID uint64) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stores[userID]
	if !ok {
		st = NewStore()
		m.stores[userID] = st
	}
	return st
}

// Drop discards a user's session state on sign-out.
func (m *Manager) Drop(userID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, userID)
}
