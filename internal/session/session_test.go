package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dygy/scorebot/internal/errors"
	"github.com/dygy/scorebot/internal/oracle"
	"github.com/dygy/scorebot/internal/router"
)

// fakeOracle returns canned classifications and records the payloads it saw.
type fakeOracle struct {
	response string
	err      error
	payloads []oracle.PromptPayload
}

func (f *fakeOracle) Classify(_ context.Context, payload oracle.PromptPayload) (string, error) {
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// emptyRouter has no capabilities wired; fine for batches that execute
// nothing (refusals, parse failures).
func emptyRouter() *router.Router {
	return router.New(router.Capabilities{}, nil)
}

func TestHandleRefusal(t *testing.T) {
	or := &fakeOracle{response: `[{"type": "none"}]`}
	mgr := NewManager(or, emptyRouter(), 8, nil)

	sess := mgr.Get("")
	replies := sess.Handle(context.Background(), "what's the weather like", nil)

	require.Len(t, replies, 1)
	assert.Equal(t, router.RefusalMessage, replies[0].Text)
	assert.Empty(t, replies[0].FilePath)
}

func TestHandleMalformedOracleOutput(t *testing.T) {
	or := &fakeOracle{response: `sure! first I'll download the song...`}
	mgr := NewManager(or, emptyRouter(), 8, nil)

	sess := mgr.Get("")
	replies := sess.Handle(context.Background(), "convert to MIDI", nil)

	// Fail closed: a single refusal, nothing executed.
	require.Len(t, replies, 1)
	assert.Equal(t, router.RefusalMessage, replies[0].Text)
}

func TestHandleOracleTimeout(t *testing.T) {
	or := &fakeOracle{err: apperrors.ErrOracleTimeout}
	mgr := NewManager(or, emptyRouter(), 8, nil)

	sess := mgr.Get("")
	replies := sess.Handle(context.Background(), "transcribe this", nil)

	require.Len(t, replies, 1)
	assert.Equal(t, timeoutReply, replies[0].Text)
}

func TestHandleRegistersAttachments(t *testing.T) {
	or := &fakeOracle{response: `[{"type": "none"}]`}
	mgr := NewManager(or, emptyRouter(), 8, nil)

	sess := mgr.Get("")
	sess.Handle(context.Background(), "here's a file", []Attachment{
		{Name: "riff.mp3", Path: "/uploads/riff.mp3"},
	})

	assets := sess.Assets()
	require.Len(t, assets, 1)
	assert.Equal(t, "riff.mp3", assets[0].DisplayName)
	assert.Equal(t, "/uploads/riff.mp3", assets[0].LocalPath)

	// The attachment must be visible to the oracle on the same message,
	// not only on the next one.
	require.Len(t, or.payloads, 1)
	assert.Contains(t, or.payloads[0].System, "/uploads/riff.mp3")
}

func TestHandleKeepsHistory(t *testing.T) {
	or := &fakeOracle{response: `[{"type": "none"}]`}
	mgr := NewManager(or, emptyRouter(), 8, nil)

	sess := mgr.Get("")
	sess.Handle(context.Background(), "first message", nil)
	sess.Handle(context.Background(), "second message", nil)

	require.Len(t, or.payloads, 2)
	assert.NotContains(t, or.payloads[0].User, "Conversation so far")
	assert.Contains(t, or.payloads[1].User, "first message")
	assert.Contains(t, or.payloads[1].User, "second message")
}

func TestHandleKeepsHistoryAcrossFailures(t *testing.T) {
	or := &fakeOracle{err: apperrors.ErrOracleTimeout}
	mgr := NewManager(or, emptyRouter(), 8, nil)

	sess := mgr.Get("")
	sess.Handle(context.Background(), "trim the chorus", nil)

	or.err = nil
	or.response = `[{"type": "none"}]`
	sess.Handle(context.Background(), "try again", nil)

	// A failed turn still happened; the oracle must see both the user's
	// line and the apology on the next turn.
	require.Len(t, or.payloads, 2)
	assert.Contains(t, or.payloads[1].User, "trim the chorus")
	assert.Contains(t, or.payloads[1].User, timeoutReply)
}

func TestManagerSessions(t *testing.T) {
	or := &fakeOracle{response: `[{"type": "none"}]`}
	mgr := NewManager(or, emptyRouter(), 8, nil)

	t.Run("EmptyIDAllocatesFresh", func(t *testing.T) {
		a := mgr.Get("")
		b := mgr.Get("")
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("SameIDReturnsSameSession", func(t *testing.T) {
		a := mgr.Get("conv-1")
		b := mgr.Get("conv-1")
		assert.Same(t, a, b)
	})

	t.Run("SessionsAreIsolated", func(t *testing.T) {
		a := mgr.Get("iso-a")
		b := mgr.Get("iso-b")

		a.Handle(context.Background(), "msg", []Attachment{{Name: "a.mp3", Path: "/a.mp3"}})

		assert.Len(t, a.Assets(), 1)
		assert.Empty(t, b.Assets())
	})
}
