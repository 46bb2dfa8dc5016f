package pagination

import (
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/fjod/go_restaurant/pkg/logger"
)

const previewBytes = 256

// Normalizer turns list responses of any known variant into Result[T].
// It never fails: an envelope it cannot read becomes an empty page and a warning.
type Normalizer[T any] struct {
	aliases []string
	log     *slog.Logger
}

type Option func(*options)

type options struct {
	aliases []string
	log     *slog.Logger
}

// WithAliases sets the entity keys tried for the named-array variant.
func WithAliases(aliases ...string) Option {
	return func(o *options) { o.aliases = append(o.aliases, aliases...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

func New[T any](opts ...Option) *Normalizer[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.aliases) == 0 {
		o.aliases = DefaultAliases
	}
	return &Normalizer[T]{
		aliases: o.aliases,
		log:     logger.OrDefault(o.log),
	}
}

// Normalize is New[T](WithAliases(aliases...)).Normalize(raw, page, limit).
func Normalize[T any](raw []byte, page, limit int, aliases ...string) Result[T] {
	return New[T](WithAliases(aliases...)).Normalize(raw, page, limit)
}

// Normalize reads raw as the response to a request for page/limit.
func (n *Normalizer[T]) Normalize(raw []byte, page, limit int) Result[T] {
	res, _ := n.NormalizeVariant(raw, page, limit)
	return res
}

// NormalizeVariant is Normalize that also reports which variant matched.
func (n *Normalizer[T]) NormalizeVariant(raw []byte, page, limit int) (Result[T], Variant) {
	page, limit = clampRequest(page, limit)

	if doc, ok := parseDocument(raw); ok {
		for _, p := range parsers {
			env, ok := p(doc, n.aliases)
			if !ok {
				continue
			}
			var items []T
			if err := json.Unmarshal(env.items, &items); err != nil {
				n.log.Debug("list items do not match type", "variant", env.variant.String(), "error", err)
				continue
			}
			return n.build(env, items, page, limit), env.variant
		}
	}

	n.log.Warn("unrecognized list response shape",
		"keys", topLevelKeys(raw),
		"bytes", len(raw),
		"preview", preview(raw),
	)
	return Empty[T](page, limit), Unrecognized
}

func (n *Normalizer[T]) build(env envelope, items []T, page, limit int) Result[T] {
	if items == nil {
		items = []T{}
	}
	if !env.serverPaged {
		return window(items, page, limit)
	}

	if p := intOr(env.meta.Page, page); p >= 1 {
		page = p
	}
	if l := intOr(env.meta.Limit, limit); l >= 1 {
		limit = l
	}
	if len(items) > limit {
		n.log.Warn("list page larger than its limit, truncating",
			"variant", env.variant.String(), "items", len(items), "limit", limit)
		items = items[:limit]
	}

	total := intOr(env.meta.Total, len(items))
	if total < len(items) {
		total = len(items)
	}

	totalPages := pageCount(total, limit)
	if env.meta.TotalPages != nil {
		totalPages = int(*env.meta.TotalPages)
	}

	return Result[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// window pages a complete collection locally.
func window[T any](all []T, page, limit int) Result[T] {
	total := len(all)
	items := []T{}
	// compare in pages first so (page-1)*limit cannot overflow
	if total > 0 && page-1 <= (total-1)/limit {
		start := (page - 1) * limit
		items = all[start : start+min(limit, total-start)]
	}
	return Result[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: pageCount(total, limit),
	}
}

func topLevelKeys(raw []byte) []string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func preview(raw []byte) string {
	if len(raw) > previewBytes {
		return string(raw[:previewBytes]) + "..."
	}
	return string(raw)
}
