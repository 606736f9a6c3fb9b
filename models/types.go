package models

// Request types

// Emotion stays a plain string so a missing field decodes as "".
type SubmitVoteRequest struct {
	Emotion string `json:"emotion"`
}

type SimulateRequest struct {
	VotesPerHour *int   `json:"votesPerHour,omitempty"`
	Day          string `json:"day,omitempty"`
}

// Response types

// Vote error codes surfaced to clients
const (
	ErrCodeAlreadyVoted   = "ALREADY_VOTED"
	ErrCodeMissingEmotion = "MISSING_EMOTION"
)

type SubmitVoteResponse struct {
	OK    bool   `json:"ok"`
	Hour  *int   `json:"hour,omitempty"`
	Error string `json:"error,omitempty"`
}

type MyVoteResponse struct {
	Emotion *Emotion `json:"emotion"`
}

// HeatmapResponse is keyed by hour; encoding/json renders the int keys as "0".."23".
type HeatmapResponse struct {
	Day    string                  `json:"day"`
	Hourly map[int]map[Emotion]int `json:"hourly"`
}

type EmotionCount struct {
	Emotion Emotion `json:"emotion"`
	Count   int     `json:"count"`
}

type SummaryResponse struct {
	Day             string         `json:"day"`
	Hour            int            `json:"hour"`
	Emotions        []EmotionCount `json:"emotions"`
	DominantEmotion *Emotion       `json:"dominantEmotion"`
	Total           int            `json:"total"`
	Percentage      int            `json:"percentage"`
}

// BackfillResponse has three shapes:
//
//	{"skipped": true}
//	{"skipped": "no activity", "day": ..., "hour": ...}
//	{"success": true, "day": ..., "hour": ..., "voteCount": ..., "counts": {...}}
type BackfillResponse struct {
	Skipped   any             `json:"skipped,omitempty"`
	Success   bool            `json:"success,omitempty"`
	Day       string          `json:"day,omitempty"`
	Hour      *int            `json:"hour,omitempty"`
	VoteCount *int            `json:"voteCount,omitempty"`
	Counts    map[Emotion]int `json:"counts,omitempty"`
}

type SimulateResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Hours   int    `json:"hours"`
	Votes   int    `json:"votes"`
}

// Domain types

// VoteRecord is one row of the vote ledger. It is never updated or deleted.
type VoteRecord struct {
	ID           string
	IdentityHash string
	Day          string
	Hour         int
	Emotion      Emotion
}

// AggregateCell is the running count for one (day, hour, emotion) triple.
type AggregateCell struct {
	Day     string  `json:"day"`
	Hour    int     `json:"hour"`
	Emotion Emotion `json:"emotion"`
	Count   int     `json:"count"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
