package store

import (
	"encoding/json"
	"time"

	"ai-survey-be/internal/constant"
)

// TranscriptEntry is one exchanged message in the local conversation log.
// Ephemeral: the backend's response rows are the source of truth.
type TranscriptEntry struct {
	Role      string    `json:"role"` // "user" | "assistant"
	Message   string    `json:"message"`
	Category  *string   `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionState is the locally cached slice of a survey session, the
// equivalent of what the browser kept in localStorage: identity, progress
// and the capped transcript used as generation context.
type SessionState struct {
	SessionID       string            `json:"session_id"`
	Email           string            `json:"email"`
	ConsentGiven    bool              `json:"consent_given"`
	QuestionCount   int               `json:"question_count"`
	StartedAt       time.Time         `json:"started_at"`
	CurrentCategory string            `json:"current_category,omitempty"`
	Transcript      []TranscriptEntry `json:"transcript"`
}

// AppendTranscript adds an entry and drops the oldest ones past the cap.
func (s *SessionState) AppendTranscript(role, message string, category *string) {
	s.Transcript = append(s.Transcript, TranscriptEntry{
		Role:      role,
		Message:   message,
		Category:  category,
		Timestamp: time.Now().UTC(),
	})
	if len(s.Transcript) > constant.TranscriptCap {
		s.Transcript = s.Transcript[len(s.Transcript)-constant.TranscriptCap:]
	}
}

// ContextWindow returns the most recent entries used as generation context.
func (s *SessionState) ContextWindow() []TranscriptEntry {
	if len(s.Transcript) <= constant.ContextWindow {
		return s.Transcript
	}
	return s.Transcript[len(s.Transcript)-constant.ContextWindow:]
}

// Stats aggregated from the transcript, feeding the completion summary.
type ConversationStats struct {
	TotalExchanges       int
	UserMessages         int
	AssistantMessages    int
	CategoriesCovered    []string
	CategoryDistribution map[string]int
	AverageMessageLength float64
}

func (s *SessionState) Stats() ConversationStats {
	stats := ConversationStats{
		CategoryDistribution: make(map[string]int),
	}

	var userChars int
	for _, e := range s.Transcript {
		switch e.Role {
		case constant.TranscriptRoleUser:
			stats.UserMessages++
			userChars += len(e.Message)
		case constant.TranscriptRoleAssistant:
			stats.AssistantMessages++
			if e.Category != nil && *e.Category != "" {
				stats.CategoryDistribution[*e.Category]++
			}
		}
	}

	for category := range stats.CategoryDistribution {
		stats.CategoriesCovered = append(stats.CategoriesCovered, category)
	}

	stats.TotalExchanges = stats.UserMessages
	if stats.AssistantMessages < stats.TotalExchanges {
		stats.TotalExchanges = stats.AssistantMessages
	}
	if stats.UserMessages > 0 {
		stats.AverageMessageLength = float64(userChars) / float64(stats.UserMessages)
	}

	return stats
}

// Snapshot serializes the state for resumption across restarts.
func (s *SessionState) Snapshot() ([]byte, error) {
	return json.Marshal(s)
}

// RestoreSessionState rebuilds a state from a snapshot.
func RestoreSessionState(data []byte) (*SessionState, error) {
	var s SessionState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
