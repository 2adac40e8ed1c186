package models

// BatchRequest is the payload for POST /api/v1/batch/profiles.
type BatchRequest struct {
	// Companies is the list of companies to profile. Required.
	Companies []ProfileRequest `json:"companies" binding:"required,min=1,max=500,dive"`

	// Options contains shared settings applied to every company.
	Options BatchOptions `json:"options"`

	// WebhookURL, when set, receives a signed completion notification
	// once the whole batch has finished.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret signs the completion notification (HMAC-SHA256).
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// BatchOptions are shared settings applied to every company in a batch.
type BatchOptions struct {
	// OwnerInfo requests LLM owner extraction for every company.
	OwnerInfo bool `json:"owner_info,omitempty"`
}

// BatchResponse is the immediate response for POST /api/v1/batch/profiles.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/profiles/:id.
type BatchStatusResponse struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	Completed int                `json:"completed"`
	Total     int                `json:"total"`
	Results   []*ProfileResponse `json:"results,omitempty"`
}

// BatchJob tracks an in-progress batch profiling operation.
type BatchJob struct {
	ID        string
	Status    string // "processing", "completed", "failed", "partial"
	Total     int
	Completed int
	Results   []*ProfileResponse
	CreatedAt int64 // unix timestamp
}
