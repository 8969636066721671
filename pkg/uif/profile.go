package uif

import (
	"fmt"
	"strings"
)

// Profile selects which rules the gate applies.
type Profile string

const (
	// ProfileStandard checks structure, provenance, fact references and distribution formats.
	ProfileStandard Profile = "standard"

	// ProfileStrict adds pillar, brand angle and humanity snippet rules on top of standard.
	ProfileStrict Profile = "strict"
)

// MaxTweetLength bounds every twitter_thread entry, counted in characters.
const MaxTweetLength = 280

// DefaultPillars are the content pillars an angle may connect to under the strict profile.
var DefaultPillars = []string{
	"Production Failure Taxonomy",
	"STATE Framework Applied",
	"Defensive Architecture",
	"The Meta Layer",
	"Regulated AI & Law 25",
}

// ParseProfile resolves a profile name. An empty name means standard.
func ParseProfile(name string) (Profile, error) {
	switch Profile(strings.ToLower(strings.TrimSpace(name))) {
	case "", ProfileStandard:
		return ProfileStandard, nil
	case ProfileStrict:
		return ProfileStrict, nil
	default:
		return "", fmt.Errorf("unknown validation profile %q", name)
	}
}

type options struct {
	profile Profile
	pillars []string
}

// Option configures Validate.
type Option func(*options)

// WithProfile selects the rule set.
func WithProfile(profile Profile) Option {
	return func(o *options) {
		o.profile = profile
	}
}

// WithPillars replaces the pillar labels accepted by the strict profile.
func WithPillars(pillars []string) Option {
	return func(o *options) {
		if len(pillars) > 0 {
			o.pillars = pillars
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		profile: ProfileStandard,
		pillars: DefaultPillars,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
