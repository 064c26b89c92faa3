// Command scribe-fakeapi serves an in-memory transcription API for local
// development and end-to-end tests of the scribe client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kbukum/scribekit/auth/token"
	"github.com/kbukum/scribekit/bootstrap"
	"github.com/kbukum/scribekit/config"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/scribetest"
	"github.com/kbukum/scribekit/server"
)

// DefaultPort matches the port the real service listens on in development.
const DefaultPort = 8000

// FakeConfig controls how the fake answers.
type FakeConfig struct {
	// Synchronous completes uploads in the transcribe response.
	Synchronous bool   `yaml:"synchronous" mapstructure:"synchronous"`
	Transcript  string `yaml:"transcript" mapstructure:"transcript"`
	MaxUpload   int64  `yaml:"max_upload" mapstructure:"max_upload"`
	// ProcessingPolls is the number of "processing" answers before a job
	// completes.
	ProcessingPolls int `yaml:"processing_polls" mapstructure:"processing_polls"`
	// Users are seeded accounts as "email:password[:name]".
	Users []string `yaml:"users" mapstructure:"users"`
}

// Config is the fake server configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server server.Config `yaml:"server" mapstructure:"server"`
	Token  token.Config  `yaml:"token" mapstructure:"token"`
	Fake   FakeConfig    `yaml:"fake" mapstructure:"fake"`
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "scribe-fakeapi"
	}
	c.ServiceConfig.ApplyDefaults()
	if c.Token.Secret == "" {
		c.Token.Secret = scribetest.DefaultSecret
	}
	if c.Token.Issuer == "" {
		c.Token.Issuer = scribetest.Engine
	}
	c.Token.ApplyDefaults()
	if c.Fake.MaxUpload <= 0 {
		c.Fake.MaxUpload = scribetest.DefaultMaxUpload
	}
	if c.Fake.ProcessingPolls <= 0 {
		c.Fake.ProcessingPolls = 1
	}
	if floor := c.Fake.MaxUpload + 1<<20; c.Server.MaxBodySize < floor {
		c.Server.MaxBodySize = floor
	}
	c.Server.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Token.Validate(); err != nil {
		return fmt.Errorf("token: %w", err)
	}
	for _, u := range c.Fake.Users {
		if _, err := parseUser(u); err != nil {
			return err
		}
	}
	return nil
}

// options translates the fake section into scribetest options.
func (c *Config) options(tokens *token.Service) ([]scribetest.Option, error) {
	steps := make([]scribetest.Step, 0, c.Fake.ProcessingPolls+1)
	for i := 0; i < c.Fake.ProcessingPolls; i++ {
		steps = append(steps, scribetest.Processing)
	}
	steps = append(steps, scribetest.Completed)

	opts := []scribetest.Option{
		scribetest.WithScript(steps...),
		scribetest.WithMaxUpload(c.Fake.MaxUpload),
		scribetest.WithTokens(tokens),
		scribetest.WithLogger(logger.Get("scribetest")),
	}
	if c.Fake.Synchronous {
		opts = append(opts, scribetest.WithSynchronous())
	}
	if c.Fake.Transcript != "" {
		opts = append(opts, scribetest.WithTranscript(c.Fake.Transcript))
	}
	for _, u := range c.Fake.Users {
		creds, err := parseUser(u)
		if err != nil {
			return nil, err
		}
		opts = append(opts, scribetest.WithUser(creds[0], creds[1], creds[2]))
	}
	return opts, nil
}

func parseUser(s string) ([3]string, error) {
	var out [3]string
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return out, fmt.Errorf("fake.users: %q is not email:password[:name]", s)
	}
	copy(out[:], parts)
	return out, nil
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "scribe-fakeapi: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scribe-fakeapi", flag.ContinueOnError)
	configFile := fs.String("config", "", "config `file`")
	envFile := fs.String("env-file", "", "dotenv `file` to load")
	port := fs.Int("port", -1, "listen port (default 8000)")
	sync := fs.Bool("sync", false, "complete uploads synchronously")
	var users []string
	fs.Func("user", "seed an account as `email:password[:name]` (repeatable)", func(v string) error {
		users = append(users, v)
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := &Config{Server: server.Config{Port: DefaultPort}}
	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	if err := config.LoadConfig("scribe-fakeapi", cfg, opts...); err != nil {
		return err
	}
	if *port >= 0 {
		cfg.Server.Port = *port
	}
	if *sync {
		cfg.Fake.Synchronous = true
	}
	cfg.Fake.Users = append(cfg.Fake.Users, users...)

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	srv, err := newServer(cfg)
	if err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent("", srv)); err != nil {
		return err
	}
	return app.Run(ctx)
}

// newServer builds the HTTP server with the fake API mounted.
func newServer(cfg *Config) (*server.Server, error) {
	tokens, err := token.NewService(cfg.Token)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.options(tokens)
	if err != nil {
		return nil, err
	}
	srv, err := server.New(cfg.Server)
	if err != nil {
		return nil, err
	}
	scribetest.New(opts...).Register(srv.Engine())
	return srv, nil
}
