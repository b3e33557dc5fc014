package maven

import (
	"strings"

	"github.com/matzehuels/depscope/pkg/errors"
)

// DefaultExtension is the packaging assumed when none is given.
const DefaultExtension = "jar"

// Coordinate is the (groupId, artifactId, version) triple of an artifact.
type Coordinate struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
}

// String returns "groupId:artifactId:version".
func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// Identity returns "groupId.artifactId", the version-independent name used
// for tree lookups.
func (c Coordinate) Identity() string {
	return c.GroupID + "." + c.ArtifactID
}

// Validate checks each part with errors.ValidateCoordinatePart.
func (c Coordinate) Validate() error {
	if err := errors.ValidateCoordinatePart("groupId", c.GroupID); err != nil {
		return err
	}
	if err := errors.ValidateCoordinatePart("artifactId", c.ArtifactID); err != nil {
		return err
	}
	return errors.ValidateCoordinatePart("version", c.Version)
}

// ParseCoordinate parses "groupId:artifactId:version".
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"expected groupId:artifactId:version, got %q", s)
	}
	c := Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Artifact is a coordinate plus the file it resolves to.
type Artifact struct {
	Coordinate
	Extension  string `json:"extension,omitempty"`
	Classifier string `json:"classifier,omitempty"`
}

// Ext returns the extension, defaulting to "jar".
func (a Artifact) Ext() string {
	if a.Extension == "" {
		return DefaultExtension
	}
	return a.Extension
}

// String returns "groupId:artifactId:extension[:classifier]:version".
func (a Artifact) String() string {
	var b strings.Builder
	b.WriteString(a.GroupID)
	b.WriteByte(':')
	b.WriteString(a.ArtifactID)
	b.WriteByte(':')
	b.WriteString(a.Ext())
	if a.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(a.Classifier)
	}
	b.WriteByte(':')
	b.WriteString(a.Version)
	return b.String()
}

// ParseArtifact parses "g:a:v", "g:a:ext:v" or "g:a:ext:classifier:v".
func ParseArtifact(s string) (Artifact, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	var a Artifact
	switch len(parts) {
	case 3:
		a = Artifact{Coordinate: Coordinate{parts[0], parts[1], parts[2]}}
	case 4:
		a = Artifact{Coordinate: Coordinate{parts[0], parts[1], parts[3]}, Extension: parts[2]}
	case 5:
		a = Artifact{Coordinate: Coordinate{parts[0], parts[1], parts[4]}, Extension: parts[2], Classifier: parts[3]}
	default:
		return Artifact{}, errors.New(errors.ErrCodeInvalidCoordinate, "malformed artifact %q", s)
	}
	if err := a.Validate(); err != nil {
		return Artifact{}, err
	}
	return a, nil
}

// Dependency is an artifact as requested by its parent.
type Dependency struct {
	Artifact
	Scope    string `json:"scope,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// String returns the resolver's textual form
// "groupId:artifactId:extension[:classifier]:version (scope[?])".
// Conflict winner metadata is compared against this string.
func (d Dependency) String() string {
	s := d.Artifact.String() + " (" + d.Scope
	if d.Optional {
		s += "?"
	}
	return s + ")"
}
