package maven

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/depscope/pkg/errors"
)

type settingsFile struct {
	LocalRepository string `xml:"localRepository"`
}

// LocalRepositoryFromSettings returns the <localRepository> of a Maven
// settings.xml, with ${user.home} and a leading ~ expanded. An unset element
// yields "".
func LocalRepositoryFromSettings(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "settings %s", path)
		}
		return "", err
	}
	var s settingsFile
	if err := xml.Unmarshal(data, &s); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	return ExpandHome(strings.TrimSpace(s.LocalRepository)), nil
}

// DefaultLocalRepository resolves the local repository the way Maven does:
// $M2_REPO, then <localRepository> in ~/.m2/settings.xml, then ~/.m2/repository.
func DefaultLocalRepository() string {
	if env := os.Getenv("M2_REPO"); env != "" {
		return ExpandHome(env)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".m2", "repository")
	}
	if repo, err := LocalRepositoryFromSettings(filepath.Join(home, ".m2", "settings.xml")); err == nil && repo != "" {
		return repo
	}
	return filepath.Join(home, ".m2", "repository")
}

// ExpandHome replaces a leading "~" and any ${user.home} with the home
// directory.
func ExpandHome(p string) string {
	if p == "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	p = strings.ReplaceAll(p, "${user.home}", home)
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}
