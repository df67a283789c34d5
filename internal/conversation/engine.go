// Package conversation drives the multi-turn flows: profile creation and
// editing, privacy settings, feedback collection and search-filter setup.
// One session exists per user at most; inbound text is routed here while a
// session is live.
package conversation

import (
	"context"
	"fmt"
	"strings"

	"proconnect/backend/internal/cache"
	"proconnect/backend/internal/directory"
	"proconnect/backend/internal/models"
)

// prompts issued when a step is entered or re-issued after invalid input.
var prompts = map[Step]string{
	StepEditConfirm:   "You already have a profile. Do you want to edit it? (yes/no)",
	StepName:          "What's your name?",
	StepTitle:         "What's your professional title?",
	StepDescription:   "Describe what you do in a few sentences.",
	StepGithub:        "Your GitHub username? (or \"skip\")",
	StepLinkedin:      "Your LinkedIn URL? (or \"skip\")",
	StepWebsite:       "Your website? (or \"skip\")",
	StepWorldID:       "Your World ID? (or \"skip\")",
	StepConfirm:       "Save this profile? (yes/no)",
	StepSettings:      "Settings: \"connections on/off\", \"search on/off\", or \"done\".",
	StepFeedbackInput: "What would you like to tell us?",
	StepSearchSetup:   "Send filter terms one per message, then \"done\".",
}

// Engine owns the session store and implements the per-step handlers.
type Engine struct {
	sessions *SessionStore
	dir      directory.Directory
	cache    *cache.Cache
}

// NewEngine wires the engine to its session store, directory and cache.
func NewEngine(sessions *SessionStore, dir directory.Directory, c *cache.Cache) *Engine {
	return &Engine{sessions: sessions, dir: dir, cache: c}
}

// Active reports whether userID has a live conversation.
func (e *Engine) Active(userID uint) bool {
	return e.sessions.Active(userID)
}

// Session returns the live session for userID, if any.
func (e *Engine) Session(userID uint) (Session, bool) {
	return e.sessions.Get(userID)
}

// StartProfile begins the profile flow. An incomplete profile goes straight
// to collection; a completed one asks for edit confirmation first.
func (e *Engine) StartProfile(ctx context.Context, userID uint) (string, error) {
	profile, err := e.dir.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", fmt.Errorf("profile flow: user %d not registered", userID)
	}

	if profile.Complete() {
		e.sessions.Start(userID, StepEditConfirm)
		return prompts[StepEditConfirm], nil
	}
	e.sessions.Start(userID, StepName)
	return prompts[StepName], nil
}

// StartSettings begins the settings loop.
func (e *Engine) StartSettings(ctx context.Context, userID uint) (string, error) {
	profile, err := e.dir.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", fmt.Errorf("settings flow: user %d not registered", userID)
	}

	e.sessions.Start(userID, StepSettings)
	return fmt.Sprintf("Connections: %s. Search visibility: %s.\n%s",
		onOff(profile.AllowConnections), onOff(profile.AllowSearch), prompts[StepSettings]), nil
}

// StartFeedback begins the single-message feedback flow.
func (e *Engine) StartFeedback(userID uint) string {
	e.sessions.Start(userID, StepFeedbackInput)
	return prompts[StepFeedbackInput]
}

// StartSearchSetup begins the filter-collection loop.
func (e *Engine) StartSearchSetup(userID uint) string {
	e.sessions.Start(userID, StepSearchSetup)
	return prompts[StepSearchSetup]
}

// HandleMessage feeds one inbound text into the user's session and returns
// the reply to send. Validation failures re-issue the current prompt; only
// directory failures surface as errors.
func (e *Engine) HandleMessage(ctx context.Context, userID uint, text string) (string, error) {
	session, ok := e.sessions.Get(userID)
	if !ok {
		return "", ErrNoActiveConversation
	}

	text = strings.TrimSpace(text)
	if strings.EqualFold(text, "cancel") {
		e.sessions.End(userID)
		return "Cancelled.", nil
	}

	switch session.Step {
	case StepEditConfirm:
		return e.handleEditConfirm(userID, text)
	case StepName, StepTitle, StepDescription, StepGithub, StepLinkedin, StepWebsite, StepWorldID:
		return e.handleProfileField(userID, session.Step, text)
	case StepConfirm:
		return e.handleConfirm(ctx, userID, session, text)
	case StepSettings:
		return e.handleSettings(ctx, userID, text)
	case StepFeedbackInput:
		return e.handleFeedback(ctx, userID, text)
	case StepSearchSetup:
		return e.handleSearchSetup(userID, session, text)
	default:
		// Unreachable while the step set stays closed.
		e.sessions.End(userID)
		return "", fmt.Errorf("conversation: unknown step %q", session.Step)
	}
}

func (e *Engine) handleEditConfirm(userID uint, text string) (string, error) {
	switch strings.ToLower(text) {
	case "yes":
		_, err := e.sessions.Update(userID, StepName, func(s *Session) {
			s.Draft = ProfileDraft{}
		})
		if err != nil {
			return "", err
		}
		return prompts[StepName], nil
	case "no":
		e.sessions.End(userID)
		return "Okay, your profile stays as it is.", nil
	default:
		return prompts[StepEditConfirm], nil
	}
}

func (e *Engine) handleProfileField(userID uint, step Step, text string) (string, error) {
	if optionalStep(step) && strings.EqualFold(text, "skip") {
		next := nextProfileStep(step)
		if _, err := e.sessions.Update(userID, next, func(s *Session) {
			setDraftField(&s.Draft, step, "")
		}); err != nil {
			return "", err
		}
		return prompts[next], nil
	}

	value, err := validateField(step, text)
	if err != nil {
		// The step does not advance; re-issue the prompt annotated with the
		// failure.
		return fmt.Sprintf("Invalid %s\n%s", err.Error(), prompts[step]), nil
	}

	next := nextProfileStep(step)
	if _, err := e.sessions.Update(userID, next, func(s *Session) {
		setDraftField(&s.Draft, step, value)
	}); err != nil {
		return "", err
	}
	return prompts[next], nil
}

func (e *Engine) handleConfirm(ctx context.Context, userID uint, session Session, text string) (string, error) {
	switch strings.ToLower(text) {
	case "yes":
		if _, err := e.dir.UpdateProfile(ctx, userID, session.Draft.Fields()); err != nil {
			return "", err
		}
		e.sessions.End(userID)
		return "Profile saved.", nil
	case "no":
		e.sessions.End(userID)
		return "Discarded. Nothing was changed.", nil
	default:
		return prompts[StepConfirm], nil
	}
}

func (e *Engine) handleSettings(ctx context.Context, userID uint, text string) (string, error) {
	if strings.EqualFold(text, "done") {
		e.sessions.End(userID)
		return "Settings saved.", nil
	}

	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 2 && (fields[1] == "on" || fields[1] == "off") {
		var column string
		switch fields[0] {
		case "connections":
			column = "allow_connections"
		case "search":
			column = "allow_search"
		}
		if column != "" {
			if _, err := e.dir.UpdateProfile(ctx, userID, map[string]any{column: fields[1] == "on"}); err != nil {
				return "", err
			}
			if _, err := e.sessions.Update(userID, StepSettings, nil); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s set to %s.\n%s", fields[0], fields[1], prompts[StepSettings]), nil
		}
	}
	return prompts[StepSettings], nil
}

func (e *Engine) handleFeedback(ctx context.Context, userID uint, text string) (string, error) {
	if text == "" {
		return prompts[StepFeedbackInput], nil
	}
	if err := e.dir.SaveFeedback(ctx, &models.Feedback{UserID: userID, Message: text}); err != nil {
		return "", err
	}
	e.sessions.End(userID)
	return "Thanks for the feedback!", nil
}

func (e *Engine) handleSearchSetup(userID uint, session Session, text string) (string, error) {
	if strings.EqualFold(text, "done") {
		e.cache.Set(fmt.Sprintf("search-filters:%d", userID), session.Filters, 0)
		e.sessions.End(userID)
		if len(session.Filters) == 0 {
			return "Search filters cleared.", nil
		}
		return fmt.Sprintf("Saved %d search filters.", len(session.Filters)), nil
	}
	if text == "" {
		return prompts[StepSearchSetup], nil
	}
	if _, err := e.sessions.Update(userID, StepSearchSetup, func(s *Session) {
		s.Filters = append(s.Filters, text)
	}); err != nil {
		return "", err
	}
	return fmt.Sprintf("Added %q. Send more terms or \"done\".", text), nil
}

func validateField(step Step, input string) (string, error) {
	switch step {
	case StepName:
		return validateName(input)
	case StepTitle:
		return validateTitle(input)
	case StepDescription:
		return validateDescription(input)
	case StepGithub:
		return validateGithub(input)
	case StepLinkedin:
		return validateLinkedin(input)
	case StepWebsite:
		return validateWebsite(input)
	case StepWorldID:
		return validateWorldID(input)
	}
	return input, nil
}

func setDraftField(draft *ProfileDraft, step Step, value string) {
	switch step {
	case StepName:
		draft.Name = value
	case StepTitle:
		draft.Title = value
	case StepDescription:
		draft.Description = value
	case StepGithub:
		draft.Github = value
	case StepLinkedin:
		draft.Linkedin = value
	case StepWebsite:
		draft.Website = value
	case StepWorldID:
		draft.WorldID = value
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
