package cli

import (
	"fmt"
	"time"

	"github.com/ppiankov/trustlens/internal/client"
	"github.com/ppiankov/trustlens/internal/history"
	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/score"
	"github.com/ppiankov/trustlens/internal/storage"
)

// openHistory opens the configured storage backend and its history log.
// Callers close the returned storage.
func openHistory(cfg *model.Config) (*history.Store, storage.Storage, error) {
	s, err := storage.Open(cfg.History)
	if err != nil {
		return nil, nil, fmt.Errorf("open history storage: %w", err)
	}
	return history.NewStore(s, cfg.History.Limit), s, nil
}

// newVerifier returns the in-process scorer when offline, else the HTTP client
func newVerifier(cfg *model.Config, offline bool) client.Verifier {
	if offline {
		return client.NewLocalVerifier(score.NewScorer())
	}
	return client.NewHTTPClient(cfg.Client)
}

// waitTimeout bounds how long a command waits for its single verification
func waitTimeout(cfg *model.Config) time.Duration {
	timeout := cfg.Client.Timeout
	if timeout <= 0 {
		timeout = client.DefaultTimeout
	}
	return timeout + timeout/2
}
