package config

import "time"

// DefaultWaitTimeout is how long a page gets to render its first member row
const DefaultWaitTimeout = 10 * time.Second

// DefaultBatchWorkers caps concurrent pages for caller-supplied batches
const DefaultBatchWorkers = 5

// DefaultUserAgent is sent by both the browser and the static fetcher
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// DefaultTargets are the two views of the current members listing
var DefaultTargets = []string{
	"https://www.knesset.gov.il/mk/heb/mkindex_current.asp?view=0",
	"https://www.knesset.gov.il/mk/heb/mkindex_current.asp?view=1",
}

// DefaultSelectors match the members listing markup
var DefaultSelectors = SelectorConfig{
	Row:         ".member-row",
	Name:        ".mk-name",
	Role:        ".mk-position",
	Affiliation: ".mk-party",
}
