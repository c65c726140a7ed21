package model

// Dialog is a terminal generation error surfaced to the user.
type Dialog struct {
	Code      string `json:"code"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}
