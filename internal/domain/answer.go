package domain

// SourceDetail describes one retrieved passage backing an answer.
type SourceDetail struct {
	DocName     string  `json:"doc_name"`
	Section     string  `json:"section"`
	Clause      string  `json:"clause"`
	Page        int     `json:"page"`
	HeadingPath string  `json:"heading_path"`
	Score       float64 `json:"score"`
	Snippet     string  `json:"snippet"`
}

// Answer is the query-time response payload. It is never persisted.
type Answer struct {
	Question   string         `json:"question"`
	Answer     string         `json:"answer"`
	Citations  string         `json:"citations"`
	Sources    []SourceDetail `json:"sources"`
	Confidence float64        `json:"confidence"`
	FollowUps  []string       `json:"follow_ups"`
}

// Stats summarizes the loaded corpus and active backends.
type Stats struct {
	Documents      int      `json:"documents"`
	Chunks         int      `json:"chunks"`
	EmbeddingModel string   `json:"embedding_model"`
	LLMBackend     string   `json:"llm_backend"`
	IndexLoaded    bool     `json:"index_loaded"`
	DocNames       []string `json:"doc_names"`
}
