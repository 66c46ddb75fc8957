// file: internal/schema/name_rules_test.go
package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name          string
		entityType    EntityType
		inputName     string
		expectError   bool
		errorContains string
	}{
		{name: "[Tool] snake case", entityType: EntityTypeTool, inputName: "get_clever_zones"},
		{name: "[Tool] camel case", entityType: EntityTypeTool, inputName: "fetchWebpage"},
		{name: "[Tool] hyphen", entityType: EntityTypeTool, inputName: "get-doc-urls"},
		{name: "[Tool] empty", entityType: EntityTypeTool, inputName: "", expectError: true, errorContains: "empty"},
		{name: "[Tool] leading digit", entityType: EntityTypeTool, inputName: "1tool", expectError: true, errorContains: "invalid tool name"},
		{name: "[Tool] space", entityType: EntityTypeTool, inputName: "get zones", expectError: true},
		{name: "[Tool] too long", entityType: EntityTypeTool, inputName: "a" + strings.Repeat("b", 64), expectError: true, errorContains: "maximum length"},
		{name: "[Prompt] valid", entityType: EntityTypePrompt, inputName: "hello_world"},
		{name: "[Prompt] leading underscore", entityType: EntityTypePrompt, inputName: "_hidden", expectError: true},
		{name: "[Resource] https uri", entityType: EntityTypeResource, inputName: "https://www.clever-cloud.com/developers/llms.txt"},
		{name: "[Resource] file uri", entityType: EntityTypeResource, inputName: "file:///tmp/doc.md"},
		{name: "[Resource] bare path", entityType: EntityTypeResource, inputName: "llms.txt", expectError: true},
		{name: "[Resource] whitespace", entityType: EntityTypeResource, inputName: "https://a b", expectError: true},
		{name: "unknown entity type", entityType: "widget", inputName: "x", expectError: true, errorContains: "unknown entity type"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateName(tc.entityType, tc.inputName)
			if !tc.expectError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tc.errorContains != "" {
				assert.Contains(t, err.Error(), tc.errorContains)
			}
		})
	}
}

func TestGetNamePatternDescription_ListsRules(t *testing.T) {
	desc := GetNamePatternDescription(EntityTypeTool)
	assert.Equal(t,
		`tool names: must start with a letter, followed by letters, digits, '_' or '-'; at most 64 characters; e.g. "get_clever_zones", "fetchWebpage", "get-doc-urls"`,
		desc)
	assert.NotContains(t, desc, "\n")

	assert.Contains(t, GetNamePatternDescription(EntityTypeResource), "at most 2048 characters")
	assert.Equal(t, "no pattern defined for widget names", GetNamePatternDescription("widget"))
}
