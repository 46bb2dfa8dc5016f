package pagination

import (
	"bytes"
	"encoding/json"
)

// Variant names the envelope a list response arrived in.
type Variant int

const (
	Unrecognized Variant = iota
	// Canonical is {"data": [...], "meta": {total, page, limit, totalPages}}.
	Canonical
	// Nested is {"data": {"data": [...], total, page, limit, totalPages}}.
	Nested
	// DataOnly is {"data": [...]} with no paging information.
	DataOnly
	// Named is {"<entity>": [...], total, totalPages}, e.g. "orders" or "roles".
	Named
	// BareArray is a plain JSON array.
	BareArray
)

func (v Variant) String() string {
	switch v {
	case Canonical:
		return "canonical"
	case Nested:
		return "nested"
	case DataOnly:
		return "data_only"
	case Named:
		return "named"
	case BareArray:
		return "bare_array"
	default:
		return "unrecognized"
	}
}

// DefaultAliases are the entity keys used by the legacy named-array endpoints.
var DefaultAliases = []string{"orders", "roles", "users", "vouchers", "reservations", "menuItems", "items"}

// envelope is what a variant parser extracts before items are typed.
// serverPaged is false when the server sent the whole collection.
type envelope struct {
	variant     Variant
	items       json.RawMessage
	meta        pageMeta
	serverPaged bool
}

// document is the decoded top level of a response: exactly one of obj and arr is set.
type document struct {
	obj map[string]json.RawMessage
	arr json.RawMessage
}

type parser func(doc document, aliases []string) (envelope, bool)

// parsers in priority order.
var parsers = []parser{
	parseCanonical,
	parseNested,
	parseDataOnly,
	parseNamed,
	parseBareArray,
}

func parseDocument(raw []byte) (document, bool) {
	switch kind(raw) {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return document{}, false
		}
		return document{obj: obj}, true
	case '[':
		if !json.Valid(raw) {
			return document{}, false
		}
		return document{arr: raw}, true
	default:
		return document{}, false
	}
}

func parseCanonical(doc document, _ []string) (envelope, bool) {
	data, meta := doc.obj["data"], doc.obj["meta"]
	if kind(data) != '[' || kind(meta) != '{' {
		return envelope{}, false
	}
	var m pageMeta
	if err := json.Unmarshal(meta, &m); err != nil {
		return envelope{}, false
	}
	return envelope{variant: Canonical, items: data, meta: m, serverPaged: true}, true
}

func parseNested(doc document, _ []string) (envelope, bool) {
	outer := doc.obj["data"]
	if kind(outer) != '{' {
		return envelope{}, false
	}
	var inner struct {
		Data json.RawMessage `json:"data"`
		pageMeta
	}
	if err := json.Unmarshal(outer, &inner); err != nil || kind(inner.Data) != '[' {
		return envelope{}, false
	}
	return envelope{variant: Nested, items: inner.Data, meta: inner.pageMeta, serverPaged: true}, true
}

func parseDataOnly(doc document, _ []string) (envelope, bool) {
	data := doc.obj["data"]
	if kind(data) != '[' {
		return envelope{}, false
	}
	if kind(doc.obj["meta"]) == '{' {
		// a meta object that failed to parse is not this variant either
		return envelope{}, false
	}
	return envelope{variant: DataOnly, items: data}, true
}

func parseNamed(doc document, aliases []string) (envelope, bool) {
	if doc.obj == nil {
		return envelope{}, false
	}
	for _, alias := range aliases {
		items := doc.obj[alias]
		if kind(items) != '[' {
			continue
		}
		var m pageMeta
		if err := decodeMeta(doc.obj, &m); err != nil {
			return envelope{}, false
		}
		return envelope{variant: Named, items: items, meta: m, serverPaged: m.Total != nil}, true
	}
	return envelope{}, false
}

func parseBareArray(doc document, _ []string) (envelope, bool) {
	if doc.arr == nil {
		return envelope{}, false
	}
	return envelope{variant: BareArray, items: doc.arr}, true
}

// decodeMeta reads top-level paging fields from an already split object.
func decodeMeta(obj map[string]json.RawMessage, m *pageMeta) error {
	fields := map[string]**count{
		"total":      &m.Total,
		"page":       &m.Page,
		"limit":      &m.Limit,
		"totalPages": &m.TotalPages,
	}
	for name, dst := range fields {
		raw, ok := obj[name]
		if !ok || kind(raw) == 'n' {
			continue
		}
		var c count
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		*dst = &c
	}
	return nil
}

// kind reports the first significant byte of a JSON value: '{', '[', '"',
// 'n' for null, or 0 for empty input. Numbers and booleans return their first byte.
func kind(raw []byte) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

// Detect classifies raw without decoding items. Nil aliases means DefaultAliases.
func Detect(raw []byte, aliases ...string) Variant {
	if len(aliases) == 0 {
		aliases = DefaultAliases
	}
	doc, ok := parseDocument(raw)
	if !ok {
		return Unrecognized
	}
	for _, p := range parsers {
		if env, ok := p(doc, aliases); ok {
			return env.variant
		}
	}
	return Unrecognized
}
