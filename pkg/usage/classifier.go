package usage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/errors"
)

// Reason explains a Verdict.
type Reason string

const (
	ReasonMissing      Reason = "missing"
	ReasonNotArchive   Reason = "not-archive"
	ReasonAllowListed  Reason = "allow-listed"
	ReasonArchiveError Reason = "archive-error"
	ReasonReferenced   Reason = "referenced"
	ReasonUnreferenced Reason = "unreferenced"
)

// DefaultAllowList names compile-only libraries that never show up in
// bytecode. Fragments are matched against the lower-cased file name with
// '/' removed.
var DefaultAllowList = []string{
	"lombok",
	"annotations",
	"javax/annotation",
	"jakarta/annotation",
	"org/jetbrains/annotations",
	"com/google/errorprone/annotations",
}

// DefaultExtension is the archive suffix the classifier accepts.
const DefaultExtension = ".jar"

// Verdict is the classification of one archive.
type Verdict struct {
	Path   string
	Used   bool
	Reason Reason
	// Evidence is the first shared type for ReasonReferenced and the
	// matching fragment for ReasonAllowListed.
	Evidence string
	Err      error // ReasonArchiveError only
}

// Classifier decides whether an archive is referenced by a project.
// Every inconclusive branch classifies the archive as used.
type Classifier struct {
	Used      *UsedTypes
	Lister    Lister
	AllowList []string
	Extension string
	Logger    *log.Logger
}

// NewClassifier returns a classifier with the default lister, allow-list and
// extension.
func NewClassifier(used *UsedTypes, logger *log.Logger) *Classifier {
	if logger == nil {
		logger = log.Default()
	}
	return &Classifier{
		Used:      used,
		Lister:    ZipLister{},
		AllowList: DefaultAllowList,
		Extension: DefaultExtension,
		Logger:    logger,
	}
}

// Classify applies, in order: missing file or wrong extension, allow-list,
// unreadable archive, then intersection with the used types.
func (c *Classifier) Classify(path string) Verdict {
	logger := c.Logger
	if logger == nil {
		logger = log.Default()
	}
	ext := c.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	lister := c.Lister
	if lister == nil {
		lister = ZipLister{}
	}

	v := Verdict{Path: path, Used: true}
	name := filepath.Base(path)

	if _, err := os.Stat(path); err != nil {
		v.Reason = ReasonMissing
		logger.Debug("archive not found, treating as used", "path", path)
		return v
	}
	if !strings.HasSuffix(name, ext) {
		v.Reason = ReasonNotArchive
		logger.Debug("not an archive, treating as used", "path", path)
		return v
	}

	if frag, ok := allowListed(strings.ToLower(name), c.AllowList); ok {
		v.Reason = ReasonAllowListed
		v.Evidence = frag
		logger.Debug("compile-only library, treating as used", "path", path, "match", frag)
		return v
	}

	types, err := lister.ListTypes(path)
	if err != nil {
		if errors.GetCode(err) != errors.ErrCodeArchiveRead {
			err = errors.Wrap(errors.ErrCodeArchiveRead, err, "list %s", path)
		}
		v.Reason = ReasonArchiveError
		v.Err = err
		logger.Warn("cannot read archive, treating as used", "path", path, "err", err)
		return v
	}

	if t, ok := c.Used.firstShared(types); ok {
		v.Reason = ReasonReferenced
		v.Evidence = t
		return v
	}
	v.Used = false
	v.Reason = ReasonUnreferenced
	logger.Debug("no referenced types in archive", "path", path, "types", types.Len())
	return v
}

func allowListed(name string, fragments []string) (string, bool) {
	for _, frag := range fragments {
		if f := strings.ReplaceAll(strings.ToLower(frag), "/", ""); f != "" && strings.Contains(name, f) {
			return frag, true
		}
	}
	return "", false
}
