package dto

// MoodHintRequest is the POST /mood-hint body: a short span of conversation
// text to classify.
type MoodHintRequest struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

// MoodHintResponse is the POST /mood-hint body. Mood is one of
// mad/upset/shock/question/happy/friend/love, or "none" when there is no
// clear signal, no text, or no usable model answer.
type MoodHintResponse struct {
	Mood       string  `json:"mood"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	Source     string  `json:"source"`
}
