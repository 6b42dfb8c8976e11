package proxyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-survey-be/internal/constant"
	"ai-survey-be/pkg/store"
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = fmt.Errorf("message too long (max %d characters)", constant.MaxMessageLength)
	ErrRequestTimeout = errors.New("generate request timed out")
)

// ProxyError carries the error message the generate endpoint returned.
type ProxyError struct {
	StatusCode int
	Message    string
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("generate endpoint: status %d: %s", e.StatusCode, e.Message)
}

// Reply is one generated message plus what the UI needs around it.
type Reply struct {
	Message            string
	Category           string
	Timestamp          time.Time
	SuggestedQuestions []string
}

type generateRequest struct {
	Message             string `json:"message"`
	ConversationHistory string `json:"conversationHistory,omitempty"`
	Category            string `json:"category,omitempty"`
	SessionID           string `json:"sessionId,omitempty"`
}

// generateResponse covers both shapes the endpoint produces: on success
// "message" is the generated reply, on failure it is the human-readable
// error detail next to "error".
type generateResponse struct {
	Message   string `json:"message"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error"`
}

// Client talks to the generate endpoint. The endpoint holds the model
// credential; this client never sees it.
type Client struct {
	endpointURL string
	httpClient  *http.Client
	timeout     time.Duration
}

func NewClient(endpointURL string) *Client {
	return &Client{
		endpointURL: endpointURL,
		httpClient:  &http.Client{},
		timeout:     constant.RequestTimeout,
	}
}

// SendMessage validates the outgoing message, appends it to the session
// transcript, forwards the recent context and returns the generated reply.
// Validation failures happen before any network activity.
func (c *Client) SendMessage(ctx context.Context, state *store.SessionState, text, category string) (*Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if len(text) > constant.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	var categoryRef *string
	if category != "" {
		categoryRef = &category
	}
	state.AppendTranscript(constant.TranscriptRoleUser, text, categoryRef)

	payload := generateRequest{
		Message:             text,
		ConversationHistory: buildHistoryContext(state),
		Category:            category,
		SessionID:           state.SessionID,
	}

	parsed, err := c.post(ctx, state.SessionID, &payload)
	if err != nil {
		return nil, err
	}

	var replyCategory *string
	if parsed.Category != "" {
		replyCategory = &parsed.Category
	}
	state.AppendTranscript(constant.TranscriptRoleAssistant, parsed.Message, replyCategory)

	timestamp := time.Now().UTC()
	if parsed.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, parsed.Timestamp); err == nil {
			timestamp = t
		}
	}

	return &Reply{
		Message:            parsed.Message,
		Category:           parsed.Category,
		Timestamp:          timestamp,
		SuggestedQuestions: SuggestQuestions(state, parsed.Category),
	}, nil
}

func (c *Client) post(ctx context.Context, sessionID string, payload *generateRequest) (*generateResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", c.endpointURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", sessionID)

	res, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded {
			return nil, ErrRequestTimeout
		}
		return nil, err
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var parsed generateResponse
	if err := json.Unmarshal(resBytes, &parsed); err != nil {
		if res.StatusCode != http.StatusOK {
			return nil, &ProxyError{StatusCode: res.StatusCode, Message: string(resBytes)}
		}
		return nil, err
	}

	if res.StatusCode != http.StatusOK || parsed.Error != "" {
		message := parsed.Message
		if message == "" {
			message = parsed.Error
		}
		if message == "" {
			message = fmt.Sprintf("network error: %d", res.StatusCode)
		}
		return nil, &ProxyError{StatusCode: res.StatusCode, Message: message}
	}

	return &parsed, nil
}

// buildHistoryContext renders the recent transcript as "role: message"
// lines, bounding the payload size.
func buildHistoryContext(state *store.SessionState) string {
	window := state.ContextWindow()
	lines := make([]string, 0, len(window))
	for _, entry := range window {
		lines = append(lines, entry.Role+": "+entry.Message)
	}
	return strings.Join(lines, "\n")
}

// SuggestQuestions returns up to MaxSuggestedQuestions hints from the
// category's question list that have not been asked yet.
func SuggestQuestions(state *store.SessionState, category string) []string {
	def := constant.CategoryByKey(category)
	if def == nil {
		return nil
	}

	used := make(map[string]bool)
	for _, entry := range state.Transcript {
		if entry.Role == constant.TranscriptRoleAssistant {
			used[strings.ToLower(entry.Message)] = true
		}
	}

	var suggestions []string
	for _, question := range def.Questions {
		if used[strings.ToLower(question)] {
			continue
		}
		suggestions = append(suggestions, question)
		if len(suggestions) == constant.MaxSuggestedQuestions {
			break
		}
	}
	return suggestions
}
