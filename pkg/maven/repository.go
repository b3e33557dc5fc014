package maven

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/errors"
)

// ArtifactPaths are the on-disk locations of one artifact.
type ArtifactPaths struct {
	Dir        string `json:"dir"`
	Archive    string `json:"archive"`
	Descriptor string `json:"descriptor"`
}

// LocalRepository is a Maven local repository laid out as
// group/path/artifactId/version/artifactId-version[-classifier].jar.
type LocalRepository struct {
	Root   string
	Logger *log.Logger
}

// Paths returns where a would live in the repository. Nothing is checked on
// disk. The descriptor is the archive path with ".jar" replaced by ".pom".
func (r LocalRepository) Paths(a Artifact) ArtifactPaths {
	dir := filepath.Join(r.Root,
		filepath.FromSlash(strings.ReplaceAll(a.GroupID, ".", "/")),
		a.ArtifactID,
		a.Version)
	name := a.ArtifactID + "-" + a.Version
	if a.Classifier != "" {
		name += "-" + a.Classifier
	}
	archive := filepath.Join(dir, name+".jar")
	return ArtifactPaths{
		Dir:        dir,
		Archive:    archive,
		Descriptor: strings.TrimSuffix(archive, ".jar") + ".pom",
	}
}

// Locate returns the archive path of a if it exists as a regular file.
func (r LocalRepository) Locate(a Artifact) (string, bool) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	path := r.Paths(a).Archive
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		logger.Debug("artifact not in local repository", "artifact", a.Coordinate, "path", path)
		return path, false
	case err != nil:
		logger.Warn("cannot stat artifact", "artifact", a.Coordinate, "path", path, "err", err)
		return path, false
	case !info.Mode().IsRegular():
		logger.Warn("artifact path is not a regular file", "artifact", a.Coordinate, "path", path)
		return path, false
	}
	return path, true
}

// CoordinateFromPath recovers the coordinate of an archive stored in a
// repository layout. The group path is taken from the segments between the
// nearest enclosing "repository" directory and the artifact directory.
func CoordinateFromPath(path string) (Coordinate, error) {
	segs := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	// .../repository/<group...>/<artifact>/<version>/<file>
	repo := -1
	for i := len(segs) - 5; i >= 0; i-- {
		if segs[i] == "repository" {
			repo = i
			break
		}
	}
	if repo < 0 {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"path is not inside a repository layout: %s", path)
	}
	n := len(segs)
	c := Coordinate{
		GroupID:    strings.Join(segs[repo+1:n-3], "."),
		ArtifactID: segs[n-3],
		Version:    segs[n-2],
	}
	if !strings.HasPrefix(segs[n-1], c.ArtifactID+"-"+c.Version) {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"file name %q does not match %s", segs[n-1], c)
	}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}
