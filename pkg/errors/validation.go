package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// coordinatePartRegex matches Maven groupId, artifactId and version segments.
// Property placeholders (${...}) are rejected since they were never interpolated.
var coordinatePartRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-+\[\](),]+$`)

// ValidateCoordinatePart validates one component of a Maven coordinate.
// The field name is only used to build the error message.
//
// Validation rules:
//   - Part cannot be empty
//   - Maximum length of 256 characters
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - Only characters Maven accepts in coordinates
func ValidateCoordinatePart(field, value string) error {
	if value == "" {
		return New(ErrCodeInvalidCoordinate, "%s cannot be empty", field)
	}

	if len(value) > 256 {
		return New(ErrCodeInvalidCoordinate, "%s too long (max 256 characters)", field)
	}

	for _, r := range value {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidCoordinate, "%s contains invalid characters", field)
		}
	}

	if strings.Contains(value, "..") || strings.ContainsAny(value, "/\\") {
		return New(ErrCodeInvalidCoordinate, "%s cannot contain path components: %q", field, value)
	}

	if !coordinatePartRegex.MatchString(value) {
		return New(ErrCodeInvalidCoordinate, "invalid %s: %q", field, value)
	}

	return nil
}

// ValidateTypeName validates an internal (slash-delimited) JVM type name such
// as "com/foo/Bar" or "com/foo/Bar$Inner".
//
// Dotted names ("com.foo.Bar") and descriptors ("Lcom/foo/Bar;") are rejected:
// every type set in the analysis uses the internal form.
func ValidateTypeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "type name cannot be empty")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.Contains(name, "//") {
		return New(ErrCodeInvalidInput, "malformed type name: %q", name)
	}
	if strings.ContainsAny(name, ".;[") {
		return New(ErrCodeInvalidInput, "type name must use internal form: %q", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "type name contains invalid characters: %q", name)
		}
	}
	return nil
}
