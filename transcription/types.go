package transcription

import (
	"io"
	"path/filepath"
	"strings"
	"time"
)

// Status is the lifecycle state of a remote transcription job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	// StatusNotFound is reported for task ids the service does not know.
	StatusNotFound Status = "not_found"
)

// IsTerminal reports whether polling should stop at s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// IsPending reports whether the job is still waiting for or doing work.
func (s Status) IsPending() bool {
	return s == StatusQueued || s == StatusProcessing
}

// ContentType selects the correction profile the service applies.
type ContentType string

const (
	ContentSermon       ContentType = "sermon"
	ContentPhoneCall    ContentType = "phonecall"
	ContentConversation ContentType = "conversation"
)

// ContentTypes lists every accepted content type.
var ContentTypes = []ContentType{ContentSermon, ContentPhoneCall, ContentConversation}

// Label returns a human-readable name.
func (c ContentType) Label() string {
	switch c {
	case ContentSermon:
		return "Sermon"
	case ContentPhoneCall:
		return "Phone call"
	case ContentConversation:
		return "Conversation"
	default:
		return string(c)
	}
}

// Language is the spoken language of the audio.
type Language string

const (
	LanguageKorean  Language = "ko"
	LanguageEnglish Language = "en"
)

// DefaultLanguage matches the service default.
const DefaultLanguage = LanguageKorean

// SummaryKind selects summary length.
type SummaryKind string

const (
	SummaryShort    SummaryKind = "short"
	SummaryDetailed SummaryKind = "detailed"
)

// Result is the payload of a completed job.
type Result struct {
	TaskID             string      `json:"task_id"`
	Status             Status      `json:"status"`
	CreatedAt          string      `json:"created_at,omitempty"`
	Language           Language    `json:"language,omitempty"`
	RawText            string      `json:"raw_text"`
	CorrectedText      string      `json:"corrected_text,omitempty"`
	Characters         int         `json:"characters"`
	DarakbangOptimized bool        `json:"darakbang_optimized,omitempty"`
	Engine             string      `json:"engine,omitempty"`
	Type               ContentType `json:"transcription_type,omitempty"`
	Summary            string      `json:"summary,omitempty"`
}

// Text returns the corrected transcript when present, the raw one otherwise.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	if r.CorrectedText != "" {
		return r.CorrectedText
	}
	return r.RawText
}

// Job is a read-only snapshot of a remote job as returned by the status
// endpoint.
type Job struct {
	TaskID string  `json:"task_id"`
	Status Status  `json:"status"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
	// CreatedAt is set for completed and failed jobs.
	CreatedAt string      `json:"created_at,omitempty"`
	Type      ContentType `json:"transcription_type,omitempty"`
}

// Submission is the response to an upload. Either Result is set (the service
// finished synchronously) or TaskID is (the job was queued).
type Submission struct {
	Status  Status      `json:"status"`
	TaskID  string      `json:"task_id,omitempty"`
	Message string      `json:"message,omitempty"`
	Engine  string      `json:"engine,omitempty"`
	Type    ContentType `json:"transcription_type,omitempty"`
	Result  *Result     `json:"-"`
}

// IsQueued reports whether the submission needs polling.
func (s *Submission) IsQueued() bool {
	return s != nil && s.Result == nil && s.TaskID != ""
}

// Request is one audio upload.
type Request struct {
	File     io.Reader `json:"-" validate:"required"`
	FileName string    `json:"file_name" validate:"required"`
	// Size is the file length in bytes, checked against the upload ceiling.
	Size        int64       `json:"size" validate:"gte=0"`
	Language    Language    `json:"language" validate:"omitempty,oneof=ko en"`
	ContentType ContentType `json:"transcription_type" validate:"omitempty,oneof=sermon phonecall conversation"`
	Correct     bool        `json:"correct"`
}

// WithDefaults fills the language and content type the service assumes.
func (r Request) WithDefaults() Request {
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.ContentType == "" {
		r.ContentType = ContentSermon
	}
	return r
}

var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".webm": "audio/webm",
	".mp4":  "video/mp4",
}

// IsAudioFile reports whether name has an extension the service accepts.
func IsAudioFile(name string) bool {
	_, ok := audioTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ContentTypeFor returns the MIME type used for the upload part of name.
func ContentTypeFor(name string) string {
	if ct, ok := audioTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// HistoryItem is one entry of the server-side transcription history.
type HistoryItem struct {
	TaskID         string      `json:"task_id"`
	Status         Status      `json:"status"`
	CreatedAt      string      `json:"created_at,omitempty"`
	Characters     int         `json:"characters"`
	Engine         string      `json:"engine,omitempty"`
	SummaryPreview string      `json:"summary_preview,omitempty"`
	Type           ContentType `json:"transcription_type,omitempty"`
}

// DraftRequest asks the service to rewrite a transcript as a structured
// record of category.
type DraftRequest struct {
	Text     string   `json:"text" validate:"required"`
	Category string   `json:"category" validate:"required"`
	Language Language `json:"language,omitempty" validate:"omitempty,oneof=ko en"`
}

// Draft is a generated, unsaved record.
type Draft struct {
	Content       string `json:"content"`
	CategoryLabel string `json:"category_label"`
}

// SaveRequest persists a draft.
type SaveRequest struct {
	Category string `json:"category" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	TaskID   string `json:"task_id,omitempty"`
}

// Record is a saved structured record.
type Record struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"category_label,omitempty"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	TaskID        string    `json:"task_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// User is the identity behind a credential.
type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Credentials is an email login or signup.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name,omitempty"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Token string `json:"access_token"`
	User  User   `json:"user"`
}
