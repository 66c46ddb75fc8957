// file: internal/mcp/helpers.go
package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	mcperrors "github.com/dkoosis/clevermcp/internal/mcp/mcp_errors"
)

// decodeParams unmarshals params into dst. Missing or null params leave dst
// at its zero value.
func decodeParams(method string, params json.RawMessage, dst interface{}) error {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return mcperrors.NewInvalidParamsError(
			fmt.Sprintf("Invalid params for %s", method),
			errors.Wrapf(err, "decoding %s params", method),
			map[string]interface{}{"method": method},
		)
	}
	return nil
}

// requireField returns an invalid params error naming field when value is empty.
func requireField(method, field, value string) error {
	if value != "" {
		return nil
	}
	return mcperrors.NewInvalidParamsError(
		fmt.Sprintf("Missing required parameter '%s' for %s", field, method),
		nil,
		map[string]interface{}{"method": method, "fields": []string{field}},
	)
}
