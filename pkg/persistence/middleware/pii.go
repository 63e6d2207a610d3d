package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/draftwizard/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// DefaultPIIPatterns match the draft fields that identify a company or an ad account.
var DefaultPIIPatterns = []string{`^orgNumber$`, `^accountId$`, `^accountName$`}

type piiMiddleware struct {
	next     ports.DraftStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of JSON keys
// matching the patterns before they reach the wrapped store. Loads are passed
// through untouched, so it only suits write-mostly sinks such as exports.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := compile(patternStrings)
	return func(next ports.DraftStore) ports.DraftStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, key string, data []byte) error {
	masked, err := redact(data, m.patterns)
	if err != nil {
		return err
	}
	return m.next.Save(ctx, key, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, key string) ([]byte, error) {
	return m.next.Load(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Redact masks every value whose key matches one of the patterns, at any depth.
func Redact(data []byte, patternStrings []string) ([]byte, error) {
	return redact(data, compile(patternStrings))
}

func compile(patternStrings []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return patterns
}

func redact(data []byte, patterns []*regexp.Regexp) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode record for masking: %w", err)
	}
	maskValue(doc, patterns)
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode masked record: %w", err)
	}
	return out, nil
}

func maskValue(v any, patterns []*regexp.Regexp) {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if matchesAny(k, patterns) {
				node[k] = Mask
				continue
			}
			maskValue(child, patterns)
		}
	case []any:
		for _, child := range node {
			maskValue(child, patterns)
		}
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
