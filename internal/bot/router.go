// Package bot routes inbound conversational text. Every message passes the
// rate limiter first; while a user has an active conversation all their text
// goes to the engine, commands included; otherwise the message is dispatched
// as a command. The chat transport itself stays behind the Transport
// interface.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"proconnect/backend/internal/cache"
	"proconnect/backend/internal/connections"
	"proconnect/backend/internal/conversation"
	"proconnect/backend/internal/directory"
	"proconnect/backend/internal/models"
	"proconnect/backend/internal/ratelimit"
)

const helpText = `Commands:
/profile - create or edit your profile
/settings - privacy settings
/feedback - send us feedback
/search - set up search filters
/connect <username> - send a connection request
/accept <username> - accept a request
/decline <username> - decline a request
/remove <username> - remove a connection
/requests - pending requests
/connections - your connections
/mutual <username> - mutual connections`

// Message is one inbound text event keyed by user id.
type Message struct {
	UserID uint
	Text   string
}

// Transport delivers replies back to users. Implemented by the chat
// integration, not here.
type Transport interface {
	Send(userID uint, text string) error
}

// Router wires the rate limiter, conversation engine and connection manager
// together.
type Router struct {
	limiter *ratelimit.Limiter
	engine  *conversation.Engine
	manager *connections.Manager
	dir     directory.Directory
	cache   *cache.Cache
}

// NewRouter builds a router over the shared components.
func NewRouter(limiter *ratelimit.Limiter, engine *conversation.Engine, manager *connections.Manager, dir directory.Directory, c *cache.Cache) *Router {
	return &Router{limiter: limiter, engine: engine, manager: manager, dir: dir, cache: c}
}

// HandleText processes one inbound message and returns the reply text.
func (r *Router) HandleText(ctx context.Context, userID uint, text string) (string, error) {
	if r.limiter.IsRateLimited(userID) {
		wait := r.limiter.TimeUntilReset(userID)
		return fmt.Sprintf("Too many requests. Try again in %d seconds.", int(wait.Seconds())+1), nil
	}

	// Conversation wins over command dispatch while active.
	if r.engine.Active(userID) {
		return r.engine.HandleMessage(ctx, userID, text)
	}

	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return helpText, nil
	}

	command, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/profile":
		return r.engine.StartProfile(ctx, userID)
	case "/settings":
		return r.engine.StartSettings(ctx, userID)
	case "/feedback":
		return r.engine.StartFeedback(userID), nil
	case "/search":
		return r.engine.StartSearchSetup(userID), nil
	case "/connect":
		return r.connect(ctx, userID, arg)
	case "/accept":
		return r.answer(ctx, userID, arg, true)
	case "/decline":
		return r.answer(ctx, userID, arg, false)
	case "/remove":
		return r.remove(ctx, userID, arg)
	case "/requests":
		return r.listRequests(ctx, userID)
	case "/connections":
		return r.listConnections(ctx, userID)
	case "/mutual":
		return r.mutual(ctx, userID, arg)
	default:
		return helpText, nil
	}
}

// Serve consumes inbound messages until ctx is done, sending every reply
// through the transport.
func (r *Router) Serve(ctx context.Context, inbound <-chan Message, transport Transport) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-inbound:
			if !ok {
				return nil
			}
			reply, err := r.HandleText(ctx, msg.UserID, msg.Text)
			if err != nil {
				reply = "Something went wrong. Please try again."
			}
			if err := transport.Send(msg.UserID, reply); err != nil {
				return err
			}
		}
	}
}

func (r *Router) resolve(ctx context.Context, username string) (uint, string) {
	if username == "" {
		return 0, "Please provide a username."
	}
	username = strings.TrimPrefix(username, "@")

	key := "profile:" + username
	if v, ok := r.cache.Get(key); ok {
		return v.(uint), ""
	}

	profile, err := r.dir.GetByUsername(ctx, username)
	if err != nil {
		return 0, "Something went wrong. Please try again."
	}
	if profile == nil {
		return 0, fmt.Sprintf("No user named %q.", username)
	}
	r.cache.Set(key, profile.ID, 0)
	return profile.ID, ""
}

func (r *Router) connect(ctx context.Context, userID uint, username string) (string, error) {
	targetID, msg := r.resolve(ctx, username)
	if msg != "" {
		return msg, nil
	}

	_, err := r.manager.CreateRequest(ctx, userID, targetID)
	switch {
	case errors.Is(err, connections.ErrSelfRequest):
		return "You cannot connect with yourself.", nil
	case errors.Is(err, connections.ErrNotFound):
		return "That user does not exist.", nil
	case errors.Is(err, connections.ErrPrivacyDenied):
		return "That user does not accept connection requests.", nil
	case errors.Is(err, connections.ErrAlreadyExists):
		return "A connection with that user already exists.", nil
	case errors.Is(err, connections.ErrQuotaExceeded):
		return fmt.Sprintf("You already have %d pending requests. Wait for answers first.", connections.MaxPendingOutgoing), nil
	case err != nil:
		return "", err
	}
	return fmt.Sprintf("Request sent to %s.", username), nil
}

func (r *Router) answer(ctx context.Context, userID uint, username string, accept bool) (string, error) {
	requesterID, msg := r.resolve(ctx, username)
	if msg != "" {
		return msg, nil
	}

	var conn *models.Connection
	var err error
	if accept {
		conn, err = r.manager.Accept(ctx, requesterID, userID)
	} else {
		conn, err = r.manager.Decline(ctx, requesterID, userID)
	}
	if err != nil {
		return "", err
	}
	if conn == nil {
		return "No pending request from that user.", nil
	}
	if accept {
		return fmt.Sprintf("You are now connected with %s.", username), nil
	}
	return "Request declined.", nil
}

func (r *Router) remove(ctx context.Context, userID uint, username string) (string, error) {
	targetID, msg := r.resolve(ctx, username)
	if msg != "" {
		return msg, nil
	}

	removed, err := r.manager.Remove(ctx, userID, targetID)
	if err != nil {
		return "", err
	}
	if !removed {
		return "No connection with that user.", nil
	}
	return "Connection removed.", nil
}

func (r *Router) listRequests(ctx context.Context, userID uint) (string, error) {
	requests, err := r.manager.PendingRequests(ctx, userID, 20, 0)
	if err != nil {
		return "", err
	}
	if len(requests) == 0 {
		return "No pending requests.", nil
	}

	var b strings.Builder
	b.WriteString("Pending requests:\n")
	for _, req := range requests {
		fmt.Fprintf(&b, "- %s (%s)\n", req.Requester.Username, req.Requester.Title)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *Router) listConnections(ctx context.Context, userID uint) (string, error) {
	views, err := r.manager.Connections(ctx, userID, 20, 0)
	if err != nil {
		return "", err
	}
	if len(views) == 0 {
		return "You have no connections yet.", nil
	}

	var b strings.Builder
	b.WriteString("Your connections:\n")
	for _, v := range views {
		fmt.Fprintf(&b, "- %s (%s)\n", v.Partner.Username, v.Partner.Title)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *Router) mutual(ctx context.Context, userID uint, username string) (string, error) {
	targetID, msg := r.resolve(ctx, username)
	if msg != "" {
		return msg, nil
	}

	mutual, err := r.manager.MutualConnections(ctx, userID, targetID)
	if err != nil {
		return "", err
	}
	if len(mutual) == 0 {
		return "No mutual connections.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Mutual connections with %s:\n", username)
	for _, s := range mutual {
		fmt.Fprintf(&b, "- %s (%s)\n", s.Username, s.Title)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
