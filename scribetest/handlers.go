package scribetest

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/scribekit/auth/token"
	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/server"
	"github.com/kbukum/scribekit/server/middleware"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/validation"
)

var errUnknownAccount = stderrors.New("scribetest: unknown account")

// MsgInvalidLogin is the login rejection detail.
const MsgInvalidLogin = "Invalid email or password"

var categoryLabels = map[string]string{
	"sermon":     "Sermon notes",
	"meeting":    "Meeting minutes",
	"counseling": "Counseling record",
	"prayer":     "Prayer request",
}

var oauthProviders = map[string]string{
	"google": "https://accounts.google.com/o/oauth2/v2/auth",
	"kakao":  "https://kauth.kakao.com/oauth/authorize",
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"engine": Engine,
		"apis":   gin.H{"gemini": true, "openai_whisper": true},
	})
}

func (s *Server) transcribe(c *gin.Context) {
	tooLarge := fmt.Sprintf("File too large. Maximum size is %s", errors.FormatBytes(s.maxUpload))
	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			server.RespondDetail(c, http.StatusBadRequest, tooLarge)
			return
		}
		server.RespondDetail(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if header.Size > s.maxUpload {
		server.RespondDetail(c, http.StatusBadRequest, tooLarge)
		return
	}
	if !transcription.IsAudioFile(header.Filename) {
		server.RespondDetail(c, http.StatusBadRequest, "Unsupported file format")
		return
	}

	up := upload{
		fileName:    header.Filename,
		size:        header.Size,
		language:    transcription.Language(c.DefaultPostForm("language", string(transcription.DefaultLanguage))),
		contentType: transcription.ContentType(c.DefaultPostForm("transcription_type", string(transcription.ContentSermon))),
	}
	up.correct, _ = strconv.ParseBool(c.DefaultPostForm("correct", "false"))
	if err := validation.New().
		OneOf("language", string(up.language), []string{"ko", "en"}).
		OneOf("transcription_type", string(up.contentType), []string{"sermon", "phonecall", "conversation"}).
		Validate(); err != nil {
		server.RespondError(c, err)
		return
	}
	if f, err := header.Open(); err == nil {
		_, _ = io.Copy(io.Discard, f)
		f.Close()
	}

	id := uuid.NewString()
	s.mu.Lock()
	t := &task{id: id, steps: s.script, upload: up, created: s.now()}
	s.tasks[id] = t
	synchronous := s.sync
	var result *transcription.Result
	if synchronous {
		result = s.completeLocked(t, Completed)
	}
	s.mu.Unlock()

	if synchronous {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":             transcription.StatusQueued,
		"task_id":            id,
		"message":            "Transcription started",
		"engine":             Engine,
		"transcription_type": up.contentType,
	})
}

func (s *Server) status(c *gin.Context) {
	id := c.Param("task_id")
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"status": transcription.StatusNotFound, "task_id": id})
		return
	}
	step := t.steps[min(t.polls, len(t.steps)-1)]
	t.polls++
	var result *transcription.Result
	if step.Status == transcription.StatusCompleted {
		result = s.completeLocked(t, step)
	}
	s.mu.Unlock()

	switch step.Status {
	case transcription.StatusCompleted:
		c.JSON(http.StatusOK, result)
	case transcription.StatusError:
		body := gin.H{"status": step.Status, "task_id": id}
		if step.Error != "" {
			body["error"] = step.Error
		}
		c.JSON(http.StatusOK, body)
	default:
		c.JSON(http.StatusOK, gin.H{"status": step.Status, "task_id": id})
	}
}

// completeLocked builds the result for t and records it in history once.
func (s *Server) completeLocked(t *task, step Step) *transcription.Result {
	var r transcription.Result
	if step.Result != nil {
		r = *step.Result
	} else {
		text := s.transcript
		if text == "" {
			text = "Transcript of " + t.upload.fileName
		}
		r = transcription.Result{
			Language: t.upload.language,
			RawText:  text,
			Engine:   Engine,
			Type:     t.upload.contentType,
		}
		if t.upload.correct {
			r.CorrectedText = strings.TrimSpace(text) + "."
			r.DarakbangOptimized = t.upload.contentType == transcription.ContentSermon
		}
		r.Characters = utf8.RuneCountInString(r.Text())
	}
	r.TaskID = t.id
	r.Status = transcription.StatusCompleted
	if r.CreatedAt == "" {
		r.CreatedAt = t.created.Format(time.RFC3339)
	}

	if !t.recorded {
		t.recorded = true
		s.history = append(s.history, transcription.HistoryItem{
			TaskID:         t.id,
			Status:         transcription.StatusCompleted,
			CreatedAt:      r.CreatedAt,
			Characters:     r.Characters,
			Engine:         r.Engine,
			SummaryPreview: preview(r.Text(), 50),
			Type:           r.Type,
		})
	}
	return &r
}

func (s *Server) summarize(c *gin.Context) {
	text := strings.TrimSpace(c.PostForm("text"))
	if text == "" {
		server.RespondDetail(c, http.StatusBadRequest, "Text is required")
		return
	}
	kind := transcription.SummaryKind(c.DefaultPostForm("summary_type", string(transcription.SummaryShort)))
	summary := preview(text, 100)
	if kind == transcription.SummaryDetailed {
		summary = "Detailed summary: " + text
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

func (s *Server) listHistory(c *gin.Context) {
	s.mu.Lock()
	items := make([]transcription.HistoryItem, 0, len(s.history))
	for i := len(s.history) - 1; i >= 0; i-- {
		items = append(items, s.history[i])
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, items)
}

func (s *Server) draft(c *gin.Context) {
	var req transcription.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondDetail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondError(c, err)
		return
	}
	label := labelFor(req.Category)
	c.JSON(http.StatusOK, transcription.Draft{
		Content:       fmt.Sprintf("# %s\n\n%s", label, strings.TrimSpace(req.Text)),
		CategoryLabel: label,
	})
}

func (s *Server) saveRecord(c *gin.Context) {
	var req transcription.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondDetail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondError(c, err)
		return
	}
	rec := transcription.Record{
		ID:            uuid.NewString(),
		Category:      req.Category,
		CategoryLabel: labelFor(req.Category),
		Title:         req.Title,
		Content:       req.Content,
		TaskID:        req.TaskID,
		CreatedAt:     s.now().UTC(),
	}
	s.mu.Lock()
	s.records = append(s.records, record{owner: c.GetString("sub"), Record: rec})
	s.mu.Unlock()
	c.JSON(http.StatusOK, rec)
}

func (s *Server) listRecords(c *gin.Context) {
	owner := c.GetString("sub")
	s.mu.Lock()
	recs := make([]transcription.Record, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].owner == owner {
			recs = append(recs, s.records[i].Record)
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, recs)
}

func (s *Server) signup(c *gin.Context) {
	var creds transcription.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		server.RespondDetail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	acc, err := s.register(creds)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	s.respondToken(c, acc.user)
}

func (s *Server) register(creds transcription.Credentials) (*account, error) {
	if err := validation.Validate(creds); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return nil, errors.InvalidInput("password", err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[creds.Email]; exists {
		return nil, errors.New(errors.ErrCodeInvalidInput, "Email already registered", http.StatusBadRequest)
	}
	name := creds.Name
	if name == "" {
		name, _, _ = strings.Cut(creds.Email, "@")
	}
	acc := &account{user: transcription.User{ID: uuid.NewString(), Email: creds.Email, Name: name}, hash: hash}
	s.accounts[creds.Email] = acc
	return acc, nil
}

func (s *Server) login(c *gin.Context) {
	var creds transcription.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		server.RespondDetail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	acc, ok := s.accounts[creds.Email]
	s.mu.Unlock()
	if !ok || s.hasher.Verify(creds.Password, acc.hash) != nil {
		server.RespondDetail(c, http.StatusUnauthorized, MsgInvalidLogin)
		return
	}
	s.respondToken(c, acc.user)
}

func (s *Server) respondToken(c *gin.Context, user transcription.User) {
	signed, _, err := s.tokens.Issue(token.Subject{ID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		server.RespondError(c, errors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, transcription.AuthResponse{Token: signed, User: user})
}

func (s *Server) me(c *gin.Context) {
	claims, _ := c.Get(middleware.ClaimsKey)
	m, _ := claims.(map[string]interface{})
	email, _ := m["email"].(string)

	s.mu.Lock()
	acc, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok {
		server.RespondDetail(c, http.StatusUnauthorized, "User not found")
		return
	}
	c.JSON(http.StatusOK, acc.user)
}

func (s *Server) oauthURL(c *gin.Context) {
	name := c.Query("provider")
	base, ok := oauthProviders[name]
	if !ok {
		server.RespondDetail(c, http.StatusBadRequest, "Unsupported provider")
		return
	}
	q := url.Values{
		"response_type": {"code"},
		"client_id":     {"scribetest"},
		"state":         {uuid.NewString()},
	}
	c.JSON(http.StatusOK, gin.H{"url": base + "?" + q.Encode()})
}

func labelFor(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}

func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}
