package generation

import "time"

// Pipeline stages reported over the progress stream.
const (
	StageStarted  = "started"
	StageContent  = "content"
	StageEnhance  = "enhance"
	StageImages   = "images"
	StagePersist  = "persist"
	StageFinished = "finished"
	StageFailed   = "failed"
)

// Event is one progress update from a generation run. The admin panel
// consumes these over SSE.
type Event struct {
	RunID   string    `json:"run_id"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	Keyword string    `json:"keyword,omitempty"`
	PostID  string    `json:"post_id,omitempty"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}
