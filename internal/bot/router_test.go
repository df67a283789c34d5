package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"proconnect/backend/internal/cache"
	"proconnect/backend/internal/connections"
	"proconnect/backend/internal/conversation"
	"proconnect/backend/internal/directory"
	"proconnect/backend/internal/models"
	"proconnect/backend/internal/ratelimit"
)

func newTestRouter(t *testing.T) (*Router, *directory.Memory) {
	t.Helper()
	dir := directory.NewMemory()
	c := cache.New()
	engine := conversation.NewEngine(conversation.NewSessionStore(), dir, c)
	manager := connections.NewManager(dir, c)
	return NewRouter(ratelimit.New(), engine, manager, dir, c), dir
}

func addUser(t *testing.T, dir *directory.Memory, id uint, username string) {
	t.Helper()
	err := dir.CreateProfile(context.Background(), &models.Profile{
		Model:            gorm.Model{ID: id},
		Username:         username,
		Email:            username + "@example.com",
		AllowConnections: true,
		AllowSearch:      true,
	})
	require.NoError(t, err)
}

func send(t *testing.T, r *Router, userID uint, text string) string {
	t.Helper()
	reply, err := r.HandleText(context.Background(), userID, text)
	require.NoError(t, err)
	return reply
}

func TestRateLimitGate(t *testing.T) {
	r, dir := newTestRouter(t)
	addUser(t, dir, 1, "ann")

	for i := 0; i < ratelimit.MaxRequests; i++ {
		reply := send(t, r, 1, "/requests")
		assert.NotContains(t, reply, "Too many requests")
	}
	reply := send(t, r, 1, "/requests")
	assert.Contains(t, reply, "Too many requests")
}

func TestConversationWinsOverCommands(t *testing.T) {
	r, dir := newTestRouter(t)
	addUser(t, dir, 1, "ann")

	send(t, r, 1, "/profile")

	// While the conversation is active even a command-looking message is
	// treated as field input: "/requests" is a syntactically valid name.
	send(t, r, 1, "/requests")
	session, ok := r.engine.Session(1)
	require.True(t, ok)
	assert.Equal(t, conversation.StepTitle, session.Step)
	assert.Equal(t, "/requests", session.Draft.Name)
}

func TestConnectFlow(t *testing.T) {
	r, dir := newTestRouter(t)
	addUser(t, dir, 1, "ann")
	addUser(t, dir, 2, "ben")

	reply := send(t, r, 1, "/connect ben")
	assert.Contains(t, reply, "Request sent")

	reply = send(t, r, 2, "/requests")
	assert.Contains(t, reply, "ann")

	reply = send(t, r, 2, "/accept ann")
	assert.Contains(t, reply, "connected")

	reply = send(t, r, 1, "/connections")
	assert.Contains(t, reply, "ben")
}

func TestConnectErrorsRenderAsText(t *testing.T) {
	r, dir := newTestRouter(t)
	addUser(t, dir, 1, "ann")
	addUser(t, dir, 2, "ben")

	assert.Contains(t, send(t, r, 1, "/connect"), "provide a username")
	assert.Contains(t, send(t, r, 1, "/connect ghost"), "No user named")
	assert.Contains(t, send(t, r, 1, "/connect ann"), "yourself")

	send(t, r, 1, "/connect ben")
	assert.Contains(t, send(t, r, 1, "/connect ben"), "already exists")
}

func TestAcceptWithoutRequest(t *testing.T) {
	r, dir := newTestRouter(t)
	addUser(t, dir, 1, "ann")
	addUser(t, dir, 2, "ben")

	reply := send(t, r, 1, "/accept ben")
	assert.Contains(t, reply, "No pending request")
}

func TestUnknownInputShowsHelp(t *testing.T) {
	r, dir := newTestRouter(t)
	addUser(t, dir, 1, "ann")

	assert.Contains(t, send(t, r, 1, "hello there"), "/profile")
	assert.Contains(t, send(t, r, 1, "/bogus"), "/profile")
}

type recordingTransport struct {
	sent []Message
}

func (r *recordingTransport) Send(userID uint, text string) error {
	r.sent = append(r.sent, Message{UserID: userID, Text: text})
	return nil
}

func TestServe(t *testing.T) {
	r, dir := newTestRouter(t)
	addUser(t, dir, 1, "ann")

	inbound := make(chan Message, 1)
	inbound <- Message{UserID: 1, Text: "/requests"}
	close(inbound)

	transport := &recordingTransport{}
	err := r.Serve(context.Background(), inbound, transport)
	require.NoError(t, err)
	require.Len(t, transport.sent, 1)
	assert.Equal(t, uint(1), transport.sent[0].UserID)
	assert.Contains(t, transport.sent[0].Text, "No pending requests")
}
