package posts

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Go's \s is ASCII-only; \p{Z} adds the Unicode space separators.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)

// Slugify lowercases title, collapses each whitespace run into a single
// hyphen and appends the Unix millisecond time of at.
//
//	Slugify("Hello World", t) == "hello-world-1714557600000"
func Slugify(title string, at time.Time) string {
	base := whitespaceRun.ReplaceAllString(strings.ToLower(title), "-")
	return base + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}
