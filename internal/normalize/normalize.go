// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize reshapes the untyped extraction payload into a
// types.ReportDocument. Missing fields take defaults; only a payload whose
// top level is neither an object nor a list of objects is rejected.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cast"

	"github.com/malpone/report-geocom/pkg/types"
)

// Payload field names, with the English aliases accepted as fallbacks.
var (
	titleKeys    = []string{"titolo_report", "title_report", "title"}
	subtitleKeys = []string{"sottotitolo_report", "subtitle_report", "subtitle"}
	sectionsKeys = []string{"lista_sezioni", "sections"}
	headingKeys  = []string{"titolo", "heading", "title"}
	bodyKeys     = []string{"testo", "body", "text"}
)

// SchemaError reports a payload whose top-level shape cannot hold a report.
type SchemaError struct {
	// Kind describes what was found instead (e.g. "string", "list of number").
	Kind string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: expected object or list of objects, got %s", e.Kind)
}

// Payload is the top-level shape of an extraction result: an Object or an
// ObjectList.
type Payload interface {
	// Document returns the object that describes the report.
	Document() map[string]any
}

// Object is a payload consisting of a single key-value structure.
type Object map[string]any

// Document returns the object itself.
func (o Object) Document() map[string]any { return o }

// ObjectList is a payload wrapped in a list whose first element is an
// object. Only that element is used; the rest are never inspected.
type ObjectList []any

// Document returns the first element, or an empty object for an empty list.
func (l ObjectList) Document() map[string]any {
	if len(l) == 0 {
		return map[string]any{}
	}
	obj, _ := l[0].(map[string]any)
	if obj == nil {
		return map[string]any{}
	}
	return obj
}

// Classify maps a decoded JSON value onto a Payload. A list is classified by
// its first element alone.
func Classify(raw any) (Payload, error) {
	switch v := raw.(type) {
	case map[string]any:
		return Object(v), nil
	case Object:
		return v, nil
	case ObjectList:
		return Classify([]any(v))
	case []map[string]any:
		list := make(ObjectList, len(v))
		for i, obj := range v {
			list[i] = obj
		}
		return list, nil
	case []any:
		if len(v) > 0 {
			if _, ok := v[0].(map[string]any); !ok {
				return nil, &SchemaError{Kind: "list of " + kindOf(v[0])}
			}
		}
		return ObjectList(v), nil
	default:
		return nil, &SchemaError{Kind: kindOf(raw)}
	}
}

// Normalizer converts payloads into documents.
type Normalizer struct {
	log *slog.Logger
}

// New returns a Normalizer. A nil logger falls back to slog.Default().
func New(log *slog.Logger) *Normalizer {
	if log == nil {
		log = slog.Default()
	}
	return &Normalizer{log: log}
}

// Normalize converts raw into a ReportDocument using the default logger.
func Normalize(raw any) (types.ReportDocument, error) {
	return New(nil).Normalize(raw)
}

// Normalize converts raw into a ReportDocument. GeneratedDate is copied from
// the "data_odierna" key as found; callers that must not trust the service
// overwrite that key before normalizing. Section order follows the payload.
func (n *Normalizer) Normalize(raw any) (types.ReportDocument, error) {
	payload, err := Classify(raw)
	if err != nil {
		return types.ReportDocument{}, err
	}
	if list, ok := payload.(ObjectList); ok && len(list) > 1 {
		n.log.Warn("extraction returned several documents, using the first", "count", len(list))
	}

	obj := payload.Document()
	doc := types.ReportDocument{
		Title:         strings.TrimSpace(lookupString(obj, titleKeys)),
		Subtitle:      lookupString(obj, subtitleKeys),
		GeneratedDate: lookupString(obj, []string{"data_odierna"}),
		Sections:      []types.Section{},
	}
	if doc.Title == "" {
		doc.Title = types.DefaultTitle
	}

	for i, entry := range lookupList(obj, sectionsKeys) {
		sec, ok := entry.(map[string]any)
		if !ok {
			n.log.Debug("skipping non-object section", "index", i, "kind", kindOf(entry))
			continue
		}
		doc.Sections = append(doc.Sections, types.Section{
			Heading: lookupString(sec, headingKeys),
			Body:    lookupString(sec, bodyKeys),
		})
	}

	n.log.Debug("normalized document", "sections", len(doc.Sections))
	return doc, nil
}

// lookupString returns the first present key coerced to a string.
func lookupString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return cast.ToString(v)
		}
	}
	return ""
}

// lookupList returns the first present key that holds a list.
func lookupList(obj map[string]any, keys []string) []any {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		if list, ok := v.([]any); ok {
			return list
		}
		if list, ok := v.([]map[string]any); ok {
			out := make([]any, len(list))
			for i, m := range list {
				out[i] = m
			}
			return out
		}
	}
	return nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
