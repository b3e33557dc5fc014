package maven

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/depscope/pkg/errors"
)

// Project is what the analysis needs from a pom.xml.
type Project struct {
	Coordinate
	Packaging       string
	Dir             string // directory holding pom.xml
	BuildDirectory  string // absolute; default <Dir>/target
	OutputDirectory string // absolute; default <BuildDirectory>/classes
	Dependencies    []Dependency
}

// Declares reports whether c (ignoring version) is a direct dependency.
func (p *Project) Declares(c Coordinate) bool {
	for _, d := range p.Dependencies {
		if d.GroupID == c.GroupID && d.ArtifactID == c.ArtifactID {
			return true
		}
	}
	return false
}

// ReadProject parses the pom.xml at path. groupId and version fall back to
// the parent's when absent. Build directories honour ${project.basedir},
// ${basedir} and ${project.build.directory}.
func ReadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "pom %s", path)
		}
		return nil, err
	}

	var pom pomProject
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	p := &Project{
		Coordinate: Coordinate{
			GroupID:    strings.TrimSpace(pom.GroupID),
			ArtifactID: strings.TrimSpace(pom.ArtifactID),
			Version:    strings.TrimSpace(pom.Version),
		},
		Packaging: strings.TrimSpace(pom.Packaging),
		Dir:       dir,
	}
	if pom.Parent != nil {
		if p.GroupID == "" {
			p.GroupID = strings.TrimSpace(pom.Parent.GroupID)
		}
		if p.Version == "" {
			p.Version = strings.TrimSpace(pom.Parent.Version)
		}
	}
	if p.Packaging == "" {
		p.Packaging = DefaultExtension
	}

	props := map[string]string{
		"project.basedir": dir,
		"basedir":         dir,
	}
	p.BuildDirectory = resolveDir(dir, pom.Build.Directory, "target", props)
	props["project.build.directory"] = p.BuildDirectory
	p.OutputDirectory = resolveDir(dir, pom.Build.OutputDirectory, filepath.Join(p.BuildDirectory, "classes"), props)

	p.Dependencies = extractDependencies(&pom)
	return p, nil
}

func resolveDir(base, value, fallback string, props map[string]string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	for k, v := range props {
		value = strings.ReplaceAll(value, "${"+k+"}", v)
	}
	value = filepath.FromSlash(value)
	if !filepath.IsAbs(value) {
		value = filepath.Join(base, value)
	}
	return filepath.Clean(value)
}

func extractDependencies(pom *pomProject) []Dependency {
	var deps []Dependency
	seen := make(map[string]bool)

	for _, dep := range pom.Dependencies {
		// Skip dependencies with unresolved Maven properties
		if strings.HasPrefix(dep.GroupID, "${") || strings.HasPrefix(dep.ArtifactID, "${") {
			continue
		}
		key := dep.GroupID + ":" + dep.ArtifactID + ":" + dep.Classifier
		if seen[key] {
			continue
		}
		seen[key] = true
		scope := strings.TrimSpace(dep.Scope)
		if scope == "" {
			scope = "compile"
		}
		deps = append(deps, Dependency{
			Artifact: Artifact{
				Coordinate: Coordinate{
					GroupID:    strings.TrimSpace(dep.GroupID),
					ArtifactID: strings.TrimSpace(dep.ArtifactID),
					Version:    strings.TrimSpace(dep.Version),
				},
				Extension:  strings.TrimSpace(dep.Type),
				Classifier: strings.TrimSpace(dep.Classifier),
			},
			Scope:    scope,
			Optional: strings.TrimSpace(dep.Optional) == "true",
		})
	}
	return deps
}

type pomProject struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Packaging    string          `xml:"packaging"`
	Name         string          `xml:"name"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	Parent       *pomParent      `xml:"parent"`
	Build        pomBuild        `xml:"build"`
}

type pomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomBuild struct {
	Directory       string `xml:"directory"`
	OutputDirectory string `xml:"outputDirectory"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Type       string `xml:"type"`
	Classifier string `xml:"classifier"`
	Scope      string `xml:"scope"`
	Optional   string `xml:"optional"`
}
