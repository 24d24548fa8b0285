// Package sanitize strips HTML from user-supplied text before it is stored.
// Bucket names, bucket descriptions, and activity descriptions are plain
// text fields; anything that looks like markup (script tags, event handlers,
// javascript: URLs) is removed wholesale with bluemonday's strict policy.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the singleton bluemonday policy. StrictPolicy removes all HTML
// elements and attributes, leaving only the text content.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text removes all HTML from user-provided input and trims surrounding
// whitespace. This MUST be called on every free-text field before storing
// it in the database; the stored value is then safe to echo back in JSON
// responses that browsers may render.
func Text(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(getPolicy().Sanitize(input))
}
