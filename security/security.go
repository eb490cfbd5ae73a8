// Package security sanitizes user-supplied market text and renders
// descriptions for display.
package security

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	maxQuestionLength    = 160
	maxDescriptionLength = 2000
	maxLabelLength       = 200
)

// MarketInput is the raw, untrusted text of a market submission.
type MarketInput struct {
	Question         string
	Description      string
	YesMeaning       string
	NoMeaning        string
	ResolutionSource string
}

// SecurityService sanitizes market text and renders markdown.
type SecurityService struct {
	strict   *bluemonday.Policy
	display  *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewSecurityService builds the service with a strict policy for stored
// fields and a UGC policy for rendered HTML.
func NewSecurityService() *SecurityService {
	return &SecurityService{
		strict:  bluemonday.StrictPolicy(),
		display: bluemonday.UGCPolicy(),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

// ValidateAndSanitizeMarketInput strips all markup from stored market text
// and enforces length limits.
func (s *SecurityService) ValidateAndSanitizeMarketInput(input MarketInput) (MarketInput, error) {
	out := MarketInput{
		Question:         strings.TrimSpace(s.strict.Sanitize(input.Question)),
		Description:      strings.TrimSpace(s.strict.Sanitize(input.Description)),
		YesMeaning:       strings.TrimSpace(s.strict.Sanitize(input.YesMeaning)),
		NoMeaning:        strings.TrimSpace(s.strict.Sanitize(input.NoMeaning)),
		ResolutionSource: strings.TrimSpace(s.strict.Sanitize(input.ResolutionSource)),
	}

	if out.Question == "" {
		return MarketInput{}, fmt.Errorf("security: question must not be empty")
	}
	if len(out.Question) > maxQuestionLength {
		return MarketInput{}, fmt.Errorf("security: question must be at most %d characters", maxQuestionLength)
	}
	if len(out.Description) > maxDescriptionLength {
		return MarketInput{}, fmt.Errorf("security: description must be at most %d characters", maxDescriptionLength)
	}
	if len(out.YesMeaning) > maxLabelLength || len(out.NoMeaning) > maxLabelLength {
		return MarketInput{}, fmt.Errorf("security: outcome meanings must be at most %d characters", maxLabelLength)
	}
	return out, nil
}

// RenderDescription converts a market description from markdown to
// sanitized HTML for clients.
func (s *SecurityService) RenderDescription(description string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(description), &buf); err != nil {
		return "", fmt.Errorf("security: render description: %w", err)
	}
	return s.display.Sanitize(buf.String()), nil
}
