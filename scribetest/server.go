package scribetest

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/kbukum/scribekit/auth/password"
	"github.com/kbukum/scribekit/auth/token"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/server/middleware"
	"github.com/kbukum/scribekit/transcription"
)

// Endpoint names used by Count and Fail.
const (
	EndpointTranscribe  = "transcribe"
	EndpointStatus      = "status"
	EndpointSummarize   = "summarize"
	EndpointDraft       = "records/draft"
	EndpointSaveRecord  = "records:save"
	EndpointListRecords = "records"
	EndpointHistory     = "history"
	EndpointLogin       = "auth/login"
	EndpointSignup      = "auth/signup"
	EndpointMe          = "auth/me"
	EndpointOAuthURL    = "auth/oauth-url"
	EndpointHealth      = "health"
)

// DefaultMaxUpload is the largest upload the fake accepts.
const DefaultMaxUpload = 100 << 20

// DefaultSecret signs tokens unless WithSecret is given.
const DefaultSecret = "scribetest-secret"

// Engine is reported by the health and result payloads.
const Engine = "scribetest"

// Step is one scripted status response. A completed step without a Result
// reports a transcript derived from the upload.
type Step struct {
	Status transcription.Status
	Error  string
	Result *transcription.Result
}

// Queued, Processing and Completed are the usual script steps.
var (
	Queued     = Step{Status: transcription.StatusQueued}
	Processing = Step{Status: transcription.StatusProcessing}
	Completed  = Step{Status: transcription.StatusCompleted}
)

// Failed is a terminal error step carrying message.
func Failed(message string) Step {
	return Step{Status: transcription.StatusError, Error: message}
}

// CompletedWith is a terminal step reporting r.
func CompletedWith(r transcription.Result) Step {
	return Step{Status: transcription.StatusCompleted, Result: &r}
}

// DefaultScript is used for uploads when no script is set.
var DefaultScript = []Step{Processing, Completed}

type upload struct {
	fileName    string
	size        int64
	language    transcription.Language
	contentType transcription.ContentType
	correct     bool
}

type task struct {
	id       string
	steps    []Step
	polls    int
	upload   upload
	created  time.Time
	recorded bool
}

type account struct {
	user transcription.User
	hash string
}

type failure struct {
	status int
	detail string
}

type record struct {
	owner string
	transcription.Record
}

// Server is an in-memory fake of the remote transcription API. It is safe
// for concurrent use.
type Server struct {
	mu         sync.Mutex
	sync       bool
	script     []Step
	transcript string
	maxUpload  int64
	tasks      map[string]*task
	history    []transcription.HistoryItem
	records    []record
	accounts   map[string]*account
	failures   map[string]failure
	counts     map[string]int

	tokens  *token.Service
	hasher  password.Hasher
	log     *logger.Logger
	now     func() time.Time
	seed    []transcription.Credentials
	handler http.Handler
	once    sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithSynchronous makes uploads complete in the transcribe response.
func WithSynchronous() Option {
	return func(s *Server) { s.sync = true }
}

// WithScript sets the status sequence for new uploads. The last step repeats
// once reached.
func WithScript(steps ...Step) Option {
	return func(s *Server) { s.script = steps }
}

// WithTranscript sets the text reported for completed uploads.
func WithTranscript(text string) Option {
	return func(s *Server) { s.transcript = text }
}

// WithMaxUpload overrides DefaultMaxUpload.
func WithMaxUpload(n int64) Option {
	return func(s *Server) { s.maxUpload = n }
}

// WithUser registers an account at construction.
func WithUser(email, pass, name string) Option {
	return func(s *Server) {
		s.seed = append(s.seed, transcription.Credentials{Email: email, Password: pass, Name: name})
	}
}

// WithTokens replaces the token service, e.g. to shorten the TTL.
func WithTokens(svc *token.Service) Option {
	return func(s *Server) { s.tokens = svc }
}

// WithLogger sets the request logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New builds a fake API. It panics if a seeded account is invalid.
func New(opts ...Option) *Server {
	s := &Server{
		script:    DefaultScript,
		maxUpload: DefaultMaxUpload,
		tasks:     make(map[string]*task),
		accounts:  make(map[string]*account),
		failures:  make(map[string]failure),
		counts:    make(map[string]int),
		hasher:    password.NewBcrypt(bcrypt.MinCost),
		log:       logger.Get("scribetest"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tokens == nil {
		svc, err := token.NewService(token.Config{Secret: DefaultSecret, Issuer: Engine})
		if err != nil {
			panic(err)
		}
		s.tokens = svc
	}
	for _, c := range s.seed {
		if _, err := s.register(c); err != nil {
			panic(err)
		}
	}
	return s
}

// Register mounts every endpoint on r: the API under /api and the health
// probe at /health.
func (s *Server) Register(r gin.IRouter) {
	r.GET("/health", s.track(EndpointHealth), s.health)

	api := r.Group("/api")
	api.POST("/transcribe", s.track(EndpointTranscribe), s.transcribe)
	api.GET("/status/:task_id", s.track(EndpointStatus), s.status)
	api.POST("/summarize", s.track(EndpointSummarize), s.summarize)
	api.GET("/history", s.track(EndpointHistory), s.listHistory)

	auth := api.Group("/auth")
	auth.POST("/login", s.track(EndpointLogin), s.login)
	auth.POST("/signup", s.track(EndpointSignup), s.signup)
	auth.GET("/oauth-url", s.track(EndpointOAuthURL), s.oauthURL)

	protected := api.Group("", middleware.Auth(s.tokens.Validator()))
	protected.GET("/auth/me", s.track(EndpointMe), s.me)
	protected.POST("/records/draft", s.track(EndpointDraft), s.draft)
	protected.POST("/records", s.track(EndpointSaveRecord), s.saveRecord)
	protected.GET("/records", s.track(EndpointListRecords), s.listRecords)
}

// Handler returns a standalone handler serving the fake API.
func (s *Server) Handler() http.Handler {
	s.once.Do(func() {
		engine := gin.New()
		engine.Use(
			middleware.Recovery(s.log),
			middleware.RequestID(),
			middleware.BodySizeLimit(s.maxUpload+1<<20),
		)
		s.Register(engine)
		s.handler = engine
	})
	return s.handler
}

// track counts requests to name and answers injected failures.
func (s *Server) track(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.counts[name]++
		f, failing := s.failures[name]
		s.mu.Unlock()
		if !failing {
			c.Next()
			return
		}
		if f.detail == "" {
			c.AbortWithStatusJSON(f.status, gin.H{})
			return
		}
		c.AbortWithStatusJSON(f.status, gin.H{"detail": f.detail})
	}
}

// Count returns how many requests reached endpoint.
func (s *Server) Count(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[endpoint]
}

// Fail makes endpoint answer status with {"detail": detail} until Heal is
// called. An empty detail sends an empty object.
func (s *Server) Fail(endpoint string, status int, detail string) {
	s.mu.Lock()
	s.failures[endpoint] = failure{status: status, detail: detail}
	s.mu.Unlock()
}

// Heal clears a failure set by Fail.
func (s *Server) Heal(endpoint string) {
	s.mu.Lock()
	delete(s.failures, endpoint)
	s.mu.Unlock()
}

// SetScript replaces the status sequence for later uploads.
func (s *Server) SetScript(steps ...Step) {
	s.mu.Lock()
	s.script = steps
	s.mu.Unlock()
}

// AddTask seeds a task as if fileName had been uploaded.
func (s *Server) AddTask(taskID, fileName string, steps ...Step) {
	if len(steps) == 0 {
		steps = DefaultScript
	}
	s.mu.Lock()
	s.tasks[taskID] = &task{
		id:      taskID,
		steps:   steps,
		upload:  upload{fileName: fileName, language: transcription.DefaultLanguage, contentType: transcription.ContentSermon},
		created: s.now(),
	}
	s.mu.Unlock()
}

// Polls returns how many status requests taskID has received.
func (s *Server) Polls(taskID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[taskID]; ok {
		return t.polls
	}
	return 0
}

// IssueToken signs a token for a registered account.
func (s *Server) IssueToken(email string) (string, error) {
	s.mu.Lock()
	acc, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok {
		return "", errUnknownAccount
	}
	signed, _, err := s.tokens.Issue(token.Subject{ID: acc.user.ID, Email: acc.user.Email, Name: acc.user.Name})
	return signed, err
}
