package domain

import "time"

// QuestionRecord is the on-disk shape of a single question inside a
// question-set file (or the jsonb column in Postgres). Zero values for
// Points and TimeLimit mean "use the configured default".
type QuestionRecord struct {
	Text            string `json:"text"`
	Answer          string `json:"answer"`
	Points          int    `json:"points,omitempty"`
	TimeLimit       int    `json:"time_limit,omitempty"`
	RevealedIndices []int  `json:"revealed_indices,omitempty"`
}

// QuestionSet is an ordered, themed list of questions.
type QuestionSet struct {
	Name      string           `json:"name"`
	Theme     string           `json:"theme,omitempty"`
	Questions []QuestionRecord `json:"questions"`
}

// ScoreEntry is one participant's row in the score ledger.
type ScoreEntry struct {
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"displayName"`
	Score         int    `json:"score"`
}

// Leaderboard is an ordered view of the ledger, best score first.
type Leaderboard struct {
	Entries   []ScoreEntry `json:"entries"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Comment is one audience message from the live-stream source.
type Comment struct {
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"displayName"`
	Text          string `json:"text"`
}

// SubmissionResult reports the outcome of one answer attempt.
type SubmissionResult struct {
	Correct bool `json:"correct"`
	Awarded int  `json:"awarded"`
}
