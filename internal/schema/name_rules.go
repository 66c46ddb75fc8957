// file: internal/schema/name_rules.go
package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// EntityType represents a type of MCP entity that needs name validation.
type EntityType string

const (
	// EntityTypeTool represents a tool entity in MCP.
	EntityTypeTool EntityType = "tool"

	// EntityTypeResource represents a resource entity in MCP. Its "name" is the URI.
	EntityTypeResource EntityType = "resource"

	// EntityTypePrompt represents a prompt entity in MCP.
	EntityTypePrompt EntityType = "prompt"
)

// NameRule defines validation rules for an entity name.
type NameRule struct {
	// Pattern is the regex pattern the name must match.
	Pattern *regexp.Regexp

	// Description is a human-readable description of the pattern.
	Description string

	// MaxLength is the maximum allowed length of the name.
	MaxLength int

	// ExampleValid contains examples of valid names.
	ExampleValid []string
}

var nameRules = map[EntityType]NameRule{
	EntityTypeTool: {
		Pattern:      regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`),
		Description:  "Must start with a letter, followed by letters, digits, '_' or '-'",
		MaxLength:    64,
		ExampleValid: []string{"get_clever_zones", "fetchWebpage", "get-doc-urls"},
	},
	EntityTypePrompt: {
		Pattern:      regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`),
		Description:  "Must start with a letter, followed by letters, digits, '_' or '-'",
		MaxLength:    64,
		ExampleValid: []string{"hello_world", "welcomeMessage"},
	},
	EntityTypeResource: {
		Pattern:      regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://\S+$`),
		Description:  "Must be an absolute URI with a scheme and no whitespace",
		MaxLength:    2048,
		ExampleValid: []string{"https://www.clever-cloud.com/developers/llms.txt", "file:///tmp/doc.md"},
	},
}

// ValidateName validates a name against the rules for a specific entity type.
func ValidateName(entityType EntityType, name string) error {
	rule, ok := nameRules[entityType]
	if !ok {
		return errors.Newf("unknown entity type: %s", entityType)
	}
	if len(name) == 0 {
		return errors.Newf("empty %s name is not allowed", entityType)
	}
	if len(name) > rule.MaxLength {
		return errors.Newf("%s name exceeds maximum length of %d characters", entityType, rule.MaxLength)
	}
	if !rule.Pattern.MatchString(name) {
		return errors.Newf("invalid %s name '%s': %s", entityType, name, rule.Description)
	}
	return nil
}

// GetNamePatternDescription summarizes the naming rules for an entity type
// on one line, for registration errors.
func GetNamePatternDescription(entityType EntityType) string {
	rule, ok := nameRules[entityType]
	if !ok {
		return fmt.Sprintf("no pattern defined for %s names", entityType)
	}

	parts := []string{
		fmt.Sprintf("%s names: %s", entityType, strings.ToLower(rule.Description[:1])+rule.Description[1:]),
		fmt.Sprintf("at most %d characters", rule.MaxLength),
	}
	if len(rule.ExampleValid) > 0 {
		quoted := make([]string, len(rule.ExampleValid))
		for i, ex := range rule.ExampleValid {
			quoted[i] = fmt.Sprintf("%q", ex)
		}
		parts = append(parts, "e.g. "+strings.Join(quoted, ", "))
	}
	return strings.Join(parts, "; ")
}
