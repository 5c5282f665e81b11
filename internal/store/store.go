// Package store persists conversation transcripts as one JSON document per
// conversation. Stored messages carry the ordered stage-one and stage-two
// lists and the chairman response; label maps and aggregate tables are
// deliberately not persisted — they are recomputable from the ordered
// stage-one list.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/council/internal/council"
)

var ErrNotFound = errors.New("conversation not found")

type Message struct {
	Role    string                   `json:"role"`
	Content string                   `json:"content,omitempty"`
	Stage1  []council.Stage1Response `json:"stage1,omitempty"`
	Stage2  []council.Stage2Ranking  `json:"stage2,omitempty"`
	Stage3  *council.Stage3Response  `json:"stage3,omitempty"`
}

type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
}

type ConversationMetadata struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
}

// Store is safe for concurrent use; writes are serialized.
type Store struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Create() (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := &Conversation{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.write(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *Store) Get(id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

// List returns metadata for all conversations, newest first.
func (s *Store) List() ([]ConversationMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var out []ConversationMetadata
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		conv, err := s.read(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			// A malformed file should not hide the rest of the list.
			continue
		}
		out = append(out, ConversationMetadata{
			ID:           conv.ID,
			CreatedAt:    conv.CreatedAt,
			Title:        conv.Title,
			MessageCount: len(conv.Messages),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// AppendUserMessage appends a user turn. The first user message titles the
// conversation.
func (s *Store) AppendUserMessage(id, content string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.read(id)
	if err != nil {
		return nil, err
	}
	conv.Messages = append(conv.Messages, Message{Role: "user", Content: content})
	if conv.Title == "" {
		conv.Title = makeTitle(content)
	}
	if err := s.write(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// AppendAssistantMessage appends a completed council run as one assistant
// turn.
func (s *Store) AppendAssistantMessage(id string, result *council.Result) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.read(id)
	if err != nil {
		return nil, err
	}
	conv.Messages = append(conv.Messages, Message{
		Role:   "assistant",
		Stage1: result.Stage1,
		Stage2: result.Stage2,
		Stage3: &result.Stage3,
	})
	if err := s.write(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *Store) path(id string) (string, error) {
	// IDs are store-issued UUIDs; parsing rejects path tricks in
	// caller-supplied values.
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrNotFound
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func (s *Store) read(id string) (*Conversation, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}
	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to parse conversation %s: %w", id, err)
	}
	return &conv, nil
}

func (s *Store) write(conv *Conversation) error {
	path, err := s.path(conv.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write conversation: %w", err)
	}
	return nil
}

func makeTitle(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	if runes := []rune(title); len(runes) > 60 {
		// Truncate on a rune boundary so multi-byte titles stay valid UTF-8.
		title = string(runes[:60]) + "…"
	}
	return title
}
