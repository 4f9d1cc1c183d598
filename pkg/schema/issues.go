package schema

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer renders validator messages in English.
var printer = message.NewPrinter(language.English)

// keywordTypes maps a failing JSON Schema keyword to an issue type.
var keywordTypes = map[string]string{
	"enum":             "enum",
	"const":            "literal_error",
	"format":           "value_error.format",
	"pattern":          "string_pattern_mismatch",
	"minLength":        "string_too_short",
	"maxLength":        "string_too_long",
	"minimum":          "greater_than_equal",
	"maximum":          "less_than_equal",
	"exclusiveMinimum": "greater_than",
	"exclusiveMaximum": "less_than",
	"multipleOf":       "multiple_of",
	"minItems":         "too_short",
	"maxItems":         "too_long",
	"uniqueItems":      "unique_items",
	"minProperties":    "too_short",
	"maxProperties":    "too_long",
}

// typeMessages maps a JSON type to an issue type and message.
var typeMessages = map[string][2]string{
	"integer": {"int_type", "Input should be a valid integer"},
	"number":  {"float_type", "Input should be a valid number"},
	"string":  {"string_type", "Input should be a valid string"},
	"boolean": {"bool_type", "Input should be a valid boolean"},
	"array":   {"list_type", "Input should be a valid list"},
	"object":  {"model_type", "Input should be a valid dictionary or object"},
	"null":    {"none_required", "Input should be null"},
}

// issueBuilder converts validator errors into Issues for one validation call.
type issueBuilder struct {
	schemaName string
	order      map[string]int
	raw        any
	prepared   any
	out        Issues
}

func (fs fieldSet) issues(schemaName string, err error, raw, prepared any) Issues {
	b := &issueBuilder{schemaName: schemaName, order: fs.order, raw: raw, prepared: prepared}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return Issues{{Loc: Loc{}, Msg: err.Error(), Type: "value_error", Input: raw, HasInput: true}}
	}
	b.collect(ve)
	b.sort()
	return b.out
}

// collect walks the error tree and keeps leaf failures.
func (b *issueBuilder) collect(ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 && ve.ErrorKind != nil {
		b.leaf(ve)
	}
	for _, cause := range ve.Causes {
		b.collect(cause)
	}
}

func (b *issueBuilder) leaf(ve *jsonschema.ValidationError) {
	loc, input := b.resolve(ve.InstanceLocation)

	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		for _, name := range k.Missing {
			b.out = append(b.out, Issue{
				Loc:      appendLoc(loc, name),
				Msg:      "Field required",
				Type:     "missing",
				Input:    input,
				HasInput: true,
			})
		}
	case *kind.AdditionalProperties:
		obj, _ := input.(map[string]any)
		for _, name := range k.Properties {
			b.out = append(b.out, Issue{
				Loc:      appendLoc(loc, name),
				Msg:      "Extra inputs are not permitted",
				Type:     "extra_forbidden",
				Input:    obj[name],
				HasInput: true,
			})
		}
	case *kind.Type:
		typ, msg := "type_error", ve.ErrorKind.LocalizedString(printer)
		for _, want := range k.Want {
			if want == "null" {
				continue
			}
			if tm, ok := typeMessages[want]; ok {
				typ, msg = tm[0], tm[1]
				break
			}
		}
		issue := Issue{Loc: loc, Msg: msg, Type: typ, Input: input, HasInput: true}
		if typ == "model_type" && len(loc) == 0 {
			issue.Ctx = map[string]any{"class_name": b.schemaName}
		}
		b.out = append(b.out, issue)
	default:
		b.out = append(b.out, Issue{
			Loc:      loc,
			Msg:      ve.ErrorKind.LocalizedString(printer),
			Type:     keywordType(ve.ErrorKind.KeywordPath()),
			Input:    input,
			HasInput: true,
		})
	}
}

// resolve turns a validator instance location into a Loc with sequence
// indexes as ints, and finds the offending value. The caller input is
// preferred; the prepared copy covers values that only exist after defaults.
func (b *issueBuilder) resolve(location []string) (Loc, any) {
	if loc, value, ok := walk(location, b.raw); ok {
		return loc, value
	}
	loc, value, _ := walk(location, b.prepared)
	return loc, value
}

func walk(location []string, root any) (Loc, any, bool) {
	loc := make(Loc, 0, len(location))
	cur, found := root, true
	for _, seg := range location {
		switch node := cur.(type) {
		case map[string]any:
			loc = append(loc, seg)
			if cur, found = node[seg]; !found {
				cur = nil
			}
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				loc, cur, found = append(loc, seg), nil, false
				continue
			}
			loc, cur = append(loc, idx), node[idx]
		default:
			if idx, err := strconv.Atoi(seg); err == nil {
				loc = append(loc, idx)
			} else {
				loc = append(loc, seg)
			}
			cur, found = nil, false
		}
		if !found {
			cur = nil
		}
	}
	return loc, cur, found
}

func appendLoc(loc Loc, seg any) Loc {
	out := make(Loc, 0, len(loc)+1)
	out = append(out, loc...)
	return append(out, seg)
}

func keywordType(path []string) string {
	if len(path) > 0 {
		if typ, ok := keywordTypes[path[len(path)-1]]; ok {
			return typ
		}
	}
	return "value_error"
}

// sort orders issues by declared field position, then by location.
// Validator errors arrive in map order, so this keeps responses stable.
func (b *issueBuilder) sort() {
	slices.SortStableFunc(b.out, func(x, y Issue) int {
		if c := compareFieldPos(b.order, x.Loc, y.Loc); c != 0 {
			return c
		}
		return strings.Compare(locKey(x.Loc), locKey(y.Loc))
	})
}

func compareFieldPos(order map[string]int, x, y Loc) int {
	px, py := fieldPos(order, x), fieldPos(order, y)
	switch {
	case px < py:
		return -1
	case px > py:
		return 1
	}
	return 0
}

func fieldPos(order map[string]int, loc Loc) int {
	if len(loc) == 0 {
		return -1
	}
	if name, ok := loc[0].(string); ok {
		if pos, ok := order[name]; ok {
			return pos
		}
	}
	return len(order)
}

func locKey(loc Loc) string {
	parts := make([]string, len(loc))
	for n, seg := range loc {
		if idx, ok := seg.(int); ok {
			parts[n] = fmt.Sprintf("%08d", idx)
			continue
		}
		parts[n] = fmt.Sprint(seg)
	}
	return strings.Join(parts, "\x00")
}
