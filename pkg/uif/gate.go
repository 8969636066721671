// Package uif validates Unified Intelligence File candidates before they are committed.
package uif

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Result is the outcome of one gate run. Errors lists every violation found, in document order.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Counts summarises a UIF document.
type Counts struct {
	Angles int `json:"angles"`
	Facts  int `json:"facts"`
}

// Validate runs the gate against a decoded JSON document. It never mutates doc and never
// stops at the first violation.
func Validate(doc any, opts ...Option) Result {
	o := newOptions(opts)

	root, err := Normalize(doc)
	if err != nil {
		return Result{Valid: false, Errors: []string{err.Error()}}
	}

	c := &checker{}

	meta, hasMeta := object(root["meta"])
	coreKnowledge, hasCore := object(root["core_knowledge"])
	angles, hasAngles := root["angles"].([]any)

	if !hasMeta {
		c.add("Missing: meta")
	}

	if !hasCore {
		c.add("Missing: core_knowledge")
	}

	if !hasAngles {
		c.add("Missing or invalid: angles")
	}

	if hasMeta {
		for _, key := range []string{"topic", "research_date", "provenance_log"} {
			if blank(meta[key]) {
				c.addf("meta.%s is empty", key)
			}
		}
	}

	facts, hasFacts := coreKnowledge["facts"].([]any)

	if hasCore {
		if !hasFacts || len(facts) == 0 {
			c.add("core_knowledge.facts must be array with min 1 item")
		} else {
			for i, raw := range facts {
				fact, _ := object(raw)
				if blank(fact["statement"]) {
					c.addf("facts[%d].statement is empty", i)
				}

				if blank(fact["source_url"]) {
					c.addf("facts[%d].source_url is empty", i)
				}
			}
		}
	}

	if hasAngles {
		if len(angles) == 0 {
			c.add("angles must have at least 1 item")
		}

		for i, raw := range angles {
			angle, _ := object(raw)
			c.checkAngle(i, angle, facts, hasFacts)
		}
	}

	if formats, present := root["distribution_formats"]; present && formats != nil {
		c.checkDistribution(formats)
	}

	if o.profile == ProfileStrict {
		c.checkStrict(root, angles, hasAngles, o.pillars)
	}

	return Result{Valid: len(c.errors) == 0, Errors: c.errors}
}

// Summary counts the angles and facts of a UIF document, ignoring anything malformed.
func Summary(doc any) Counts {
	root, err := Normalize(doc)
	if err != nil {
		return Counts{}
	}

	angles, _ := root["angles"].([]any)
	coreKnowledge, _ := object(root["core_knowledge"])
	facts, _ := coreKnowledge["facts"].([]any)

	return Counts{Angles: len(angles), Facts: len(facts)}
}

// Normalize returns doc as a JSON object, re-encoding Go values that are not already one.
func Normalize(doc any) (map[string]any, error) {
	if root, ok := doc.(map[string]any); ok {
		return root, nil
	}

	if doc == nil {
		return nil, errors.New("document is empty")
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("document is not JSON: %w", err)
	}

	var root map[string]any

	err = json.Unmarshal(data, &root)
	if err != nil || root == nil {
		return nil, errors.New("document is not a JSON object")
	}

	return root, nil
}

type checker struct {
	errors []string
}

func (c *checker) add(msg string) {
	c.errors = append(c.errors, msg)
}

func (c *checker) addf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *checker) checkAngle(i int, angle map[string]any, facts []any, hasFacts bool) {
	if blank(angle["angle_name"]) {
		c.addf("angles[%d].angle_name is empty", i)
	}

	if blank(angle["contrarian_take"]) {
		c.addf("angles[%d].contrarian_take is empty", i)
	}

	raw, present := angle["supporting_facts"]
	if !present || raw == nil {
		return
	}

	refs, ok := raw.([]any)
	if !ok {
		c.addf("angles[%d].supporting_facts must be array", i)

		return
	}

	if !hasFacts {
		return
	}

	maxIdx := len(facts) - 1

	for j, ref := range refs {
		// Whole floats are range-checked before conversion so huge values keep their reported value.
		if v, ok := ref.(float64); ok && whole(v) && (v < 0 || v > float64(maxIdx)) {
			c.addf("angles[%d].supporting_facts[%d]=%v out of bounds (max %d)", i, j, ref, maxIdx)

			continue
		}

		idx, ok := integer(ref)
		if !ok {
			c.addf("angles[%d].supporting_facts[%d]=%v not integer (max %d)", i, j, ref, maxIdx)

			continue
		}

		if idx < 0 || idx > int64(maxIdx) {
			c.addf("angles[%d].supporting_facts[%d]=%d out of bounds (max %d)", i, j, idx, maxIdx)
		}
	}
}

func (c *checker) checkDistribution(raw any) {
	formats, ok := object(raw)
	if !ok {
		c.add("distribution_formats must be object")

		return
	}

	if value, present := formats["linkedin_post"]; present && value != nil {
		posts, ok := value.([]any)
		if !ok {
			c.add("linkedin_post must be array")
		}

		for i, item := range posts {
			if _, ok := item.(string); !ok {
				c.addf("linkedin_post[%d] must be string", i)
			}
		}
	}

	if value, present := formats["twitter_thread"]; present && value != nil {
		thread, ok := value.([]any)
		if !ok {
			c.add("twitter_thread must be array")
		}

		for i, item := range thread {
			tweet, ok := item.(string)
			if !ok {
				c.addf("twitter_thread[%d] must be string", i)

				continue
			}

			if utf8.RuneCountInString(tweet) > MaxTweetLength {
				c.addf("twitter_thread[%d] exceeds %d chars", i, MaxTweetLength)
			}
		}
	}

	if value, present := formats["youtube_angle"]; present && value != nil {
		if _, ok := value.(string); !ok {
			c.add("youtube_angle must be string")
		}
	}
}

func (c *checker) checkStrict(root map[string]any, angles []any, hasAngles bool, pillars []string) {
	brandSpecific := false

	for i, raw := range angles {
		angle, _ := object(raw)

		pillar, _ := angle["pillar_connection"].(string)

		switch {
		case strings.TrimSpace(pillar) == "":
			c.addf("angles[%d].pillar_connection missing", i)
		case !namesPillar(pillar, pillars):
			c.addf("angles[%d].pillar_connection doesn't name a valid pillar", i)
		}

		flag, ok := angle["brand_specific_angle"].(bool)
		if !ok {
			c.addf("angles[%d].brand_specific_angle not boolean", i)
		}

		brandSpecific = brandSpecific || flag
	}

	if hasAngles && len(angles) > 0 && !brandSpecific {
		c.add("No angle has brand_specific_angle=true")
	}

	snippets, ok := root["humanity_snippets"].([]any)
	if !ok {
		c.add("humanity_snippets missing")

		return
	}

	for i, raw := range snippets {
		snippet, _ := object(raw)

		if _, ok := snippet["suggested_tags"].([]any); !ok {
			c.addf("humanity_snippets[%d].suggested_tags not array", i)
		}

		if blank(snippet["relevance_note"]) {
			c.addf("humanity_snippets[%d].relevance_note empty", i)
		}
	}
}

func namesPillar(connection string, pillars []string) bool {
	for _, pillar := range pillars {
		if strings.Contains(connection, pillar) {
			return true
		}
	}

	return false
}

func object(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)

	return m, ok
}

// blank is true for anything that is not a string with visible content.
func blank(value any) bool {
	s, ok := value.(string)

	return !ok || strings.TrimSpace(s) == ""
}

func whole(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Trunc(v) == v
}

func integer(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		if !whole(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}

		return int64(v), true
	case json.Number:
		n, err := v.Int64()

		return n, err == nil
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}
