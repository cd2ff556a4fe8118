// Package session owns per-conversation state: the chat history the
// oracle sees, the asset cache, and the message pipeline that ties
// context building, classification, parsing and execution together.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dygy/scorebot/internal/asset"
	apperrors "github.com/dygy/scorebot/internal/errors"
	"github.com/dygy/scorebot/internal/intent"
	"github.com/dygy/scorebot/internal/oracle"
	"github.com/dygy/scorebot/internal/respond"
	"github.com/dygy/scorebot/internal/router"
)

// historyLimit caps how many prior lines the oracle sees.
const historyLimit = 20

// Fixed replies for pipeline-level failures (as opposed to per-action
// capability failures, which the router words itself).
const (
	timeoutReply = "That took too long to figure out. Please try again."
	oracleReply  = "I couldn't understand that request. Please try rephrasing it."
)

// Oracle classifies a prompt payload into raw action text.
type Oracle interface {
	Classify(ctx context.Context, payload oracle.PromptPayload) (string, error)
}

// Attachment is an audio file delivered alongside a message.
type Attachment struct {
	Name string
	Path string
}

// Session is one conversation. Messages are processed one at a time
// end-to-end; the mutex serializes concurrent deliveries so the cache
// needs no locking of its own.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	history []string
	assets  *asset.Cache
	oracle  Oracle
	router  *router.Router
	log     *slog.Logger
}

// Handle processes one incoming message: attachments become known
// assets, the oracle classifies, the parser validates, the router
// executes, and the results are formatted into replies.
func (s *Session) Handle(ctx context.Context, text string, attachments []Attachment) []respond.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, att := range attachments {
		name := att.Name
		if name == "" {
			name = filepath.Base(att.Path)
		}
		s.assets.Register(asset.Asset{LocalPath: att.Path, DisplayName: name})
	}

	payload := oracle.BuildContext(s.history, s.assets.Assets(), text)

	// Record the user's line before anything can fail; the next turn's
	// context must show it even when this turn only produced an apology.
	s.remember("user: " + text)

	raw, err := s.oracle.Classify(ctx, payload)
	if err != nil {
		s.log.Error("classification failed", "session", s.ID, "error", err)
		reply := oracleReply
		if errors.Is(err, apperrors.ErrOracleTimeout) {
			reply = timeoutReply
		}
		s.remember("bot: " + reply)
		return []respond.Message{{Text: reply}}
	}

	actions, err := intent.Parse(raw)
	if err != nil {
		// Fail closed: nothing executes on a malformed batch.
		s.log.Warn("unparsable oracle response", "session", s.ID, "error", err)
		s.remember("bot: " + router.RefusalMessage)
		return []respond.Message{{Text: router.RefusalMessage}}
	}

	results := s.router.Execute(ctx, actions, s.assets)
	replies := respond.FormatAll(results)

	for _, reply := range replies {
		s.remember("bot: " + summarize(reply))
	}

	return replies
}

// Assets exposes the known-asset inventory for inspection endpoints.
func (s *Session) Assets() []asset.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets.Assets()
}

func (s *Session) remember(line string) {
	s.history = append(s.history, line)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
}

// summarize condenses a reply into one history line.
func summarize(m respond.Message) string {
	if m.FilePath != "" {
		return fmt.Sprintf("%s%s", m.Text, filepath.Base(m.FilePath))
	}
	if idx := strings.IndexByte(m.Text, '\n'); idx != -1 {
		return m.Text[:idx]
	}
	return m.Text
}
