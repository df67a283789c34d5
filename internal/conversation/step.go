package conversation

// Step identifies a state of the conversational flow. The set is closed;
// anything else is rejected by the engine.
type Step string

const (
	// Profile flow.
	StepEditConfirm Step = "edit_confirm"
	StepName        Step = "name"
	StepTitle       Step = "title"
	StepDescription Step = "description"
	StepGithub      Step = "github"
	StepLinkedin    Step = "linkedin"
	StepWebsite     Step = "website"
	StepWorldID     Step = "world_id"
	StepConfirm     Step = "confirm"

	// Standalone flows sharing the same session store.
	StepSettings      Step = "settings"
	StepFeedbackInput Step = "feedback_input"
	StepSearchSetup   Step = "advanced_search_setup"
)

// profileFlowOrder is the linear order of the profile collection steps.
var profileFlowOrder = []Step{
	StepName,
	StepTitle,
	StepDescription,
	StepGithub,
	StepLinkedin,
	StepWebsite,
	StepWorldID,
	StepConfirm,
}

// nextProfileStep returns the step after s in the profile flow, or StepConfirm
// when s is the last collecting step.
func nextProfileStep(s Step) Step {
	for i, step := range profileFlowOrder {
		if step == s && i+1 < len(profileFlowOrder) {
			return profileFlowOrder[i+1]
		}
	}
	return StepConfirm
}

// optionalStep reports whether "skip" is accepted at s.
func optionalStep(s Step) bool {
	switch s {
	case StepGithub, StepLinkedin, StepWebsite, StepWorldID:
		return true
	}
	return false
}
