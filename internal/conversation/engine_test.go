package conversation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proconnect/backend/internal/cache"
	"proconnect/backend/internal/directory"
	"proconnect/backend/internal/models"
)

func newTestEngine(t *testing.T) (*Engine, *directory.Memory, *cache.Cache) {
	t.Helper()
	dir := directory.NewMemory()
	c := cache.New()
	engine := NewEngine(NewSessionStore(), dir, c)

	err := dir.CreateProfile(context.Background(), &models.Profile{
		Username:         "ann",
		Email:            "ann@example.com",
		AllowConnections: true,
		AllowSearch:      true,
	})
	require.NoError(t, err)
	return engine, dir, c
}

func say(t *testing.T, e *Engine, userID uint, text string) string {
	t.Helper()
	reply, err := e.HandleMessage(context.Background(), userID, text)
	require.NoError(t, err)
	return reply
}

func TestProfileFlowEndToEnd(t *testing.T) {
	engine, dir, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.StartProfile(ctx, 1)
	require.NoError(t, err)
	require.True(t, engine.Active(1))

	say(t, engine, 1, "Ann Chovey")
	say(t, engine, 1, "Distributed Systems Engineer")
	say(t, engine, 1, "I build consensus protocols.")
	say(t, engine, 1, "@annchovey")
	say(t, engine, 1, "linkedin.com/in/annchovey")
	say(t, engine, 1, "skip") // website
	say(t, engine, 1, "skip") // world id

	session, ok := engine.Session(1)
	require.True(t, ok)
	assert.Equal(t, StepConfirm, session.Step)
	assert.Equal(t, "annchovey", session.Draft.Github)

	reply := say(t, engine, 1, "yes")
	assert.Equal(t, "Profile saved.", reply)
	assert.False(t, engine.Active(1))

	profile, err := dir.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ann Chovey", profile.Name)
	assert.Equal(t, "https://linkedin.com/in/annchovey", profile.Linkedin)
	assert.Empty(t, profile.Website, "skipped field stays empty")
}

func TestInvalidInputDoesNotAdvance(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.StartProfile(context.Background(), 1)
	require.NoError(t, err)

	reply := say(t, engine, 1, strings.Repeat("a", 51))
	assert.Contains(t, reply, "name")

	session, ok := engine.Session(1)
	require.True(t, ok)
	assert.Equal(t, StepName, session.Step, "step stays on validation failure")
}

func TestSkipRejectedOnRequiredField(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.StartProfile(context.Background(), 1)
	require.NoError(t, err)

	// "skip" is not a keyword at the name step; it is just a (valid) name.
	say(t, engine, 1, "skip")
	session, _ := engine.Session(1)
	assert.Equal(t, StepTitle, session.Step)
	assert.Equal(t, "skip", session.Draft.Name)
}

func TestConfirmNoDiscards(t *testing.T) {
	engine, dir, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.StartProfile(ctx, 1)
	require.NoError(t, err)
	say(t, engine, 1, "Ann")
	say(t, engine, 1, "Engineer")
	say(t, engine, 1, "Builds things.")
	say(t, engine, 1, "skip")
	say(t, engine, 1, "skip")
	say(t, engine, 1, "skip")
	say(t, engine, 1, "skip")

	reply := say(t, engine, 1, "no")
	assert.Contains(t, reply, "Discarded")
	assert.False(t, engine.Active(1))

	profile, _ := dir.GetProfile(ctx, 1)
	assert.Empty(t, profile.Name, "nothing persisted on discard")
}

func TestEditConfirmFlow(t *testing.T) {
	engine, dir, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := dir.UpdateProfile(ctx, 1, map[string]any{"name": "Ann", "title": "Engineer"})
	require.NoError(t, err)

	reply, err := engine.StartProfile(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, reply, "edit")

	reply = say(t, engine, 1, "no")
	assert.Contains(t, reply, "stays")
	assert.False(t, engine.Active(1))

	_, err = engine.StartProfile(ctx, 1)
	require.NoError(t, err)
	say(t, engine, 1, "yes")
	session, _ := engine.Session(1)
	assert.Equal(t, StepName, session.Step)
}

func TestCancelEndsAnyFlow(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.StartProfile(context.Background(), 1)
	require.NoError(t, err)

	reply := say(t, engine, 1, "cancel")
	assert.Equal(t, "Cancelled.", reply)
	assert.False(t, engine.Active(1))
}

func TestSettingsFlow(t *testing.T) {
	engine, dir, _ := newTestEngine(t)
	ctx := context.Background()

	reply, err := engine.StartSettings(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, reply, "Connections: on")

	say(t, engine, 1, "connections off")
	profile, _ := dir.GetProfile(ctx, 1)
	assert.False(t, profile.AllowConnections)
	assert.True(t, engine.Active(1), "settings loops until done")

	say(t, engine, 1, "search off")
	profile, _ = dir.GetProfile(ctx, 1)
	assert.False(t, profile.AllowSearch)

	reply = say(t, engine, 1, "done")
	assert.Equal(t, "Settings saved.", reply)
	assert.False(t, engine.Active(1))
}

func TestFeedbackFlow(t *testing.T) {
	engine, dir, _ := newTestEngine(t)

	engine.StartFeedback(1)
	reply := say(t, engine, 1, "love the product")
	assert.Contains(t, reply, "Thanks")
	assert.False(t, engine.Active(1))

	entries := dir.Feedback()
	require.Len(t, entries, 1)
	assert.Equal(t, uint(1), entries[0].UserID)
	assert.Equal(t, "love the product", entries[0].Message)
}

func TestSearchSetupFlow(t *testing.T) {
	engine, _, c := newTestEngine(t)

	engine.StartSearchSetup(1)
	say(t, engine, 1, "golang")
	say(t, engine, 1, "distributed systems")
	reply := say(t, engine, 1, "done")
	assert.Contains(t, reply, "2")
	assert.False(t, engine.Active(1))

	v, ok := c.Get("search-filters:1")
	require.True(t, ok)
	assert.Equal(t, []string{"golang", "distributed systems"}, v)
}

func TestHandleMessageWithoutSession(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.HandleMessage(context.Background(), 1, "hello")
	assert.ErrorIs(t, err, ErrNoActiveConversation)
}
