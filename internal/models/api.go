package models

// ErrorResponse is the JSON body of every failed request. Error carries the
// human-readable message clients show.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WSMessage is one frame pushed to a viewer page.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}
