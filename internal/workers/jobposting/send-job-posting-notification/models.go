// internal/workers/jobposting/send-job-posting-notification/models.go
package sendjobpostingnotification

type Input struct {
	RequestID       string `json:"requestId"`
	Title           string `json:"title"`
	Department      string `json:"department"`
	Division        string `json:"division"`
	DocumentSetPath string `json:"documentSetPath"`
	DocumentSetURL  string `json:"documentSetUrl"`
	RequestedBy     string `json:"requestedBy,omitempty"`
}

type Output struct {
	Notified  bool   `json:"notified"`
	MessageID string `json:"messageId,omitempty"`
	EventID   string `json:"eventId,omitempty"`
	SentAt    string `json:"sentAt"`
}

// Event is published to the job posting topic after a document set is created.
type Event struct {
	EventID         string `json:"eventId"`
	RequestID       string `json:"requestId"`
	Title           string `json:"title"`
	Department      string `json:"department"`
	Division        string `json:"division"`
	DocumentSetPath string `json:"documentSetPath"`
	DocumentSetURL  string `json:"documentSetUrl"`
	RequestedBy     string `json:"requestedBy,omitempty"`
	OccurredAt      string `json:"occurredAt"`
}

const EventTypeCreated = "job-posting.created"
