package feed

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	datePrefixLayout = "060102-"
	// A slug name (with extension) must be longer than this to be used.
	minSlugNameLen = 5
	fallbackDir    = "feed"
)

var (
	titleNoiseMarkers = []string{": ", " - ", " | ", " ("}
	nonWordRun        = regexp.MustCompile(`\W+`)
)

// SanitizeFeedTitle turns a channel title into a directory name. The title is
// cut at the first noise marker found, trying ": ", " - ", " | " and " (" in
// that order. Path separators are removed; an unusable result falls back to
// the host of feedURL.
func SanitizeFeedTitle(title, feedURL string) string {
	for _, marker := range titleNoiseMarkers {
		if i := strings.Index(title, marker); i >= 0 {
			title = title[:i]
			break
		}
	}

	title = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return -1
		}
		return r
	}, title)
	title = strings.TrimSpace(title)

	if title != "" && title != "." && title != ".." {
		return title
	}

	if u, err := url.Parse(feedURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return fallbackDir
}

// BaseName is the last path segment of rawURL with any query string removed.
func BaseName(rawURL string) string {
	if q := strings.IndexByte(rawURL, '?'); q >= 0 {
		rawURL = rawURL[:q]
	}
	return rawURL[strings.LastIndexByte(rawURL, '/')+1:]
}

// Slug folds accents and collapses every run of non-word characters in
// title to a single underscore.
func Slug(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}
	return nonWordRun.ReplaceAllString(folded, "_")
}

// Target is where an enclosure is written.
type Target struct {
	Dir  string
	Path string
}

// Resolver computes destination paths under a root directory.
type Resolver struct {
	root string
	now  func() time.Time
}

func NewResolver(root string) *Resolver {
	return &Resolver{
		root: root,
		now:  time.Now,
	}
}

// Resolve picks the file path for an enclosure. The plain URL file name is
// used unless unique names are forced or that path already exists; then a
// slug of the item title is tried, and finally a millisecond timestamp.
func (r *Resolver) Resolve(enc Enclosure, flags Flags) Target {
	dir := filepath.Join(r.root, SanitizeFeedTitle(enc.FeedTitle, enc.FeedURL))

	prefix := ""
	if flags.DatePrefix() {
		stamp := r.now()
		if enc.PublishedAt != nil {
			stamp = *enc.PublishedAt
		}
		prefix = stamp.Local().Format(datePrefixLayout)
	}

	base := BaseName(enc.URL)
	target := Target{Dir: dir, Path: filepath.Join(dir, prefix+base)}

	if base != "" && !flags.UniqueNames() && !exists(target.Path) {
		return target
	}

	ext := path.Ext(base)

	if enc.ItemTitle != "" {
		name := Slug(enc.ItemTitle) + ext
		if len(name) > minSlugNameLen {
			candidate := filepath.Join(dir, prefix+name)
			if !exists(candidate) {
				target.Path = candidate
				return target
			}
		}
	}

	for ms := r.now().UnixMilli(); ; ms++ {
		candidate := filepath.Join(dir, prefix+strconv.FormatInt(ms, 10)+ext)
		if !exists(candidate) {
			target.Path = candidate
			return target
		}
	}
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
