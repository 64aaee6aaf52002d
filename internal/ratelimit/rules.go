// Package ratelimit implements the sliding-window request limiter that
// guards the public API. Rules are resolved per request from a static
// table; request history is tracked in process, per client.
package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// Rule bounds the number of requests a client may make inside a window.
type Rule struct {
	MaxRequests int
	Window      time.Duration
}

type matcherKind int

const (
	matchExact matcherKind = iota
	matchPrefix
	matchMethodPath
)

type matcher struct {
	kind   matcherKind
	method string
	path   string
	rule   Rule
}

// Table resolves the applicable rule for a method/path pair. Matchers are
// evaluated in precedence order: exact path, prefix, method+path, fallback.
type Table struct {
	exact      []matcher
	prefix     []matcher
	methodPath []matcher
	fallback   Rule
}

// TableBuilder accumulates matchers before freezing them into a Table.
type TableBuilder struct {
	table Table
}

// NewTableBuilder starts a table with the given fallback rule.
func NewTableBuilder(fallback Rule) *TableBuilder {
	return &TableBuilder{table: Table{fallback: fallback}}
}

// Exact registers a rule applied to one path regardless of method.
func (b *TableBuilder) Exact(path string, rule Rule) *TableBuilder {
	b.table.exact = append(b.table.exact, matcher{kind: matchExact, path: path, rule: rule})
	return b
}

// Prefix registers a rule applied to every path under the given prefix.
func (b *TableBuilder) Prefix(prefix string, rule Rule) *TableBuilder {
	b.table.prefix = append(b.table.prefix, matcher{kind: matchPrefix, path: prefix, rule: rule})
	return b
}

// MethodPath registers a rule applied only to a specific method on a path.
func (b *TableBuilder) MethodPath(method, path string, rule Rule) *TableBuilder {
	b.table.methodPath = append(b.table.methodPath, matcher{kind: matchMethodPath, method: method, path: path, rule: rule})
	return b
}

// Build freezes the table. The table is immutable afterwards.
func (b *TableBuilder) Build() *Table {
	t := b.table
	return &t
}

// Resolve returns the rule governing the given request. It never fails:
// unmatched requests fall through to the fallback rule.
func (t *Table) Resolve(method, path string) Rule {
	for _, m := range t.exact {
		if m.path == path {
			return m.rule
		}
	}
	for _, m := range t.prefix {
		if strings.HasPrefix(path, m.path) {
			return m.rule
		}
	}
	for _, m := range t.methodPath {
		if m.method == method && m.path == path {
			return m.rule
		}
	}
	return t.fallback
}

// MaxWindow reports the longest window across all rules. The janitor uses
// it to decide when a client history is fully expired.
func (t *Table) MaxWindow() time.Duration {
	max := t.fallback.Window
	for _, group := range [][]matcher{t.exact, t.prefix, t.methodPath} {
		for _, m := range group {
			if m.rule.Window > max {
				max = m.rule.Window
			}
		}
	}
	return max
}

// DefaultTable returns the production rule table for the Raama API.
func DefaultTable() *Table {
	return NewTableBuilder(Rule{MaxRequests: 100, Window: time.Minute}).
		Exact("/api/auth/login", Rule{MaxRequests: 5, Window: 5 * time.Minute}).
		Exact("/api/auth/register", Rule{MaxRequests: 3, Window: 5 * time.Minute}).
		Exact("/api/auth/admin-login", Rule{MaxRequests: 3, Window: 5 * time.Minute}).
		Exact("/api/writer-requests", Rule{MaxRequests: 1, Window: time.Hour}).
		Prefix("/api/admin/", Rule{MaxRequests: 50, Window: time.Minute}).
		MethodPath(http.MethodPost, "/api/shayaris", Rule{MaxRequests: 10, Window: time.Minute}).
		Build()
}
