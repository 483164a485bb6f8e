// Package api defines the HTTP request and response payloads.
package api

// QueryRequest asks a question on behalf of a user. TopK is optional
// and bounds how many chunks back a knowledge answer.
type QueryRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id,omitempty"`
	TopK     int    `json:"top_k,omitempty"`
}

// SourceDocument attributes part of an answer to an indexed chunk.
type SourceDocument struct {
	Content    string `json:"content"`
	DocID      string `json:"doc_id"`
	ChunkIndex int    `json:"chunk_index"`
}

// QueryResponse carries the answer and its source attributions.
// Sources is empty unless the question took the knowledge route.
type QueryResponse struct {
	Answer  string           `json:"answer"`
	Sources []SourceDocument `json:"sources"`
}

// IngestRequest uploads one document's text for indexing.
type IngestRequest struct {
	DocID string `json:"doc_id"`
	Text  string `json:"text"`
}

// IngestResponse reports one ingestion run.
type IngestResponse struct {
	DocID      string `json:"doc_id"`
	ChunkCount int    `json:"chunk_count"`
	Truncated  int    `json:"truncated_chunks"`
}

// SignupRequest starts registration for a roster-verified student.
type SignupRequest struct {
	RegID string `json:"reg_id"`
	Email string `json:"email"`
}

// OTPVerifyRequest confirms the emailed code and sets the password.
type OTPVerifyRequest struct {
	RegID           string `json:"reg_id"`
	OTP             string `json:"otp"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest exchanges credentials for an access token.
type LoginRequest struct {
	RegID    string `json:"reg_id"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token.
type LoginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

// HistoryTurn is one past question/answer pair.
type HistoryTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// HistoryResponse lists a user's turns oldest first.
type HistoryResponse struct {
	UserID string        `json:"user_id"`
	Turns  []HistoryTurn `json:"turns"`
}
