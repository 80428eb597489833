package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"dailybrief/internal/core"
)

// GenerateOperation is the supported-operation name for single-turn generation.
const GenerateOperation = "generateContent"

// DefaultModelPattern prefers the fast Gemini tier.
const DefaultModelPattern = "flash"

// ModelLister is the part of Provider the selector needs.
type ModelLister interface {
	ListModels(ctx context.Context) ([]core.ModelDescriptor, error)
}

// SelectModel lists the models available to the credential and picks the
// first generation-capable one matching pattern, falling back to the first
// generation-capable model of any name. Listing order is kept, so the
// choice is deterministic for a given listing.
func SelectModel(ctx context.Context, lister ModelLister, credential, pattern string) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", &SelectorError{Kind: NoCredential}
	}
	if lister == nil {
		return "", &SelectorError{Kind: ListUnavailable, Err: fmt.Errorf("no provider")}
	}

	models, err := lister.ListModels(ctx)
	if err != nil {
		return "", &SelectorError{Kind: ListUnavailable, Err: err}
	}

	name, err := PickModel(models, pattern)
	if err != nil {
		return "", err
	}
	return name, nil
}

// PickModel applies the preference order to an already fetched listing.
func PickModel(models []core.ModelDescriptor, pattern string) (string, error) {
	var re *regexp.Regexp
	if pattern != "" {
		compiled, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return "", &SelectorError{Kind: NoUsableModel, Err: fmt.Errorf("invalid model pattern %q: %w", pattern, err)}
		}
		re = compiled
	}

	var firstCapable string
	for _, m := range models {
		if m.Name == "" || !m.Supports(GenerateOperation) {
			continue
		}
		if re != nil && re.MatchString(m.Name) {
			return m.Name, nil
		}
		if firstCapable == "" {
			firstCapable = m.Name
		}
	}

	if firstCapable == "" {
		return "", &SelectorError{Kind: NoUsableModel}
	}
	return firstCapable, nil
}
