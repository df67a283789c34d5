package conversation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ValidationError describes a rejected field input. It is surfaced as a
// re-prompt and never ends the session.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var githubUsernameRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

func validateName(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", &ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	if len(input) > 50 {
		return "", &ValidationError{Field: "name", Reason: "must be 50 characters or fewer"}
	}
	return input, nil
}

func validateTitle(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", &ValidationError{Field: "title", Reason: "cannot be empty"}
	}
	if len(input) > 100 {
		return "", &ValidationError{Field: "title", Reason: "must be 100 characters or fewer"}
	}
	return input, nil
}

func validateDescription(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", &ValidationError{Field: "description", Reason: "cannot be empty"}
	}
	if len(input) > 300 {
		return "", &ValidationError{Field: "description", Reason: "must be 300 characters or fewer"}
	}
	return input, nil
}

// validateGithub accepts a GitHub username, tolerating a leading "@".
func validateGithub(input string) (string, error) {
	input = strings.TrimPrefix(strings.TrimSpace(input), "@")
	if input == "" || len(input) > 39 || !githubUsernameRe.MatchString(input) {
		return "", &ValidationError{Field: "github", Reason: "must be a valid GitHub username"}
	}
	return input, nil
}

// normalizeURL coerces bare host/path input by prefixing https:// and
// requires the result to parse as an absolute URL.
func normalizeURL(field, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", &ValidationError{Field: field, Reason: "cannot be empty"}
	}
	if !strings.Contains(input, "://") {
		input = "https://" + input
	}
	parsed, err := url.Parse(input)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return "", &ValidationError{Field: field, Reason: "must be a valid URL"}
	}
	return parsed.String(), nil
}

func validateLinkedin(input string) (string, error) {
	normalized, err := normalizeURL("linkedin", input)
	if err != nil {
		return "", err
	}
	parsed, _ := url.Parse(normalized)
	if !strings.Contains(parsed.Host, "linkedin.com") {
		return "", &ValidationError{Field: "linkedin", Reason: "must be a linkedin.com URL"}
	}
	return normalized, nil
}

func validateWebsite(input string) (string, error) {
	return normalizeURL("website", input)
}

func validateWorldID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", &ValidationError{Field: "world_id", Reason: "cannot be empty"}
	}
	if len(input) > 255 {
		return "", &ValidationError{Field: "world_id", Reason: "must be 255 characters or fewer"}
	}
	return input, nil
}
