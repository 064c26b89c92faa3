package transcription

import (
	"context"

	"github.com/kbukum/scribekit/provider"
)

// Provider turns an audio upload into a finished transcript, hiding whether
// the backend answered synchronously or through a queued job.
type Provider interface {
	provider.Provider

	Transcribe(ctx context.Context, req Request) (*Result, error)
}
