package elevenlabs

import "encoding/json"

// Turn roles as returned by the convai transcript API.
const (
	RoleAgent = "agent"
	RoleUser  = "user"
)

// Conversation is the summary record returned by the list endpoint.
type Conversation struct {
	ConversationID    string `json:"conversation_id"`
	AgentID           string `json:"agent_id"`
	AgentName         string `json:"agent_name"`
	StartTimeUnixSecs int64  `json:"start_time_unix_secs"`
	CallDurationSecs  int    `json:"call_duration_secs"`
	MessageCount      int    `json:"message_count"`
	Status            string `json:"status"`
	CallSuccessful    string `json:"call_successful"`
	TranscriptSummary string `json:"transcript_summary"`
	CallSummaryTitle  string `json:"call_summary_title,omitempty"`
	Summary           string `json:"summary,omitempty"`
}

// ConversationList is the shape of the list endpoint response.
type ConversationList struct {
	Conversations []Conversation `json:"conversations"`
	NextCursor    string         `json:"next_cursor"`
	HasMore       bool           `json:"has_more"`
}

// TranscriptTurn is a single turn of a call transcript.
type TranscriptTurn struct {
	Role           string          `json:"role"`
	Message        string          `json:"message"`
	TimeInCallSecs int             `json:"time_in_call_secs"`
	TurnMetrics    json.RawMessage `json:"conversation_turn_metrics,omitempty"`
}

// Metadata carries call-level timing and cost.
type Metadata struct {
	StartTimeUnixSecs int64   `json:"start_time_unix_secs"`
	CallDurationSecs  int     `json:"call_duration_secs"`
	Cost              float64 `json:"cost"`
}

// Analysis is the provider's post-call evaluation block.
type Analysis struct {
	CallSuccessful            string                     `json:"call_successful"`
	TranscriptSummary         string                     `json:"transcript_summary"`
	EvaluationCriteriaResults map[string]json.RawMessage `json:"evaluation_criteria_results,omitempty"`
}

// ConversationDetails is the full record for a single conversation,
// fetched lazily and never cached beyond the current interaction.
type ConversationDetails struct {
	Conversation
	Transcript []TranscriptTurn `json:"transcript"`
	Metadata   Metadata         `json:"metadata"`
	Analysis   Analysis         `json:"analysis"`
}
