package catalog

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/prayerclock/internal/citation"
)

// sourcesFromValue converts a citation list attribute. A single entry is
// accepted in place of a list.
func sourcesFromValue(v cty.Value) ([]citation.Source, error) {
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	if !(ty.IsListType() || ty.IsTupleType() || ty.IsSetType()) {
		src, err := sourceFromValue(v)
		if err != nil {
			return nil, err
		}
		return []citation.Source{src}, nil
	}

	var out []citation.Source
	for it := v.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		src, err := sourceFromValue(elem)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(out)+1, err)
		}
		out = append(out, src)
	}
	return out, nil
}

// optionalSource converts a single citation attribute; null yields nil.
func optionalSource(v cty.Value) (*citation.Source, error) {
	if v.IsNull() {
		return nil, nil
	}
	src, err := sourceFromValue(v)
	if err != nil {
		return nil, err
	}
	return &src, nil
}

func sourceFromValue(v cty.Value) (citation.Source, error) {
	if !v.IsWhollyKnown() || v.IsNull() {
		return citation.Source{}, fmt.Errorf("citation must be a known, non-null value")
	}

	ty := v.Type()
	if ty == cty.String {
		return citation.Literal("", v.AsString()), nil
	}
	if !(ty.IsObjectType() || ty.IsMapType()) {
		return citation.Source{}, fmt.Errorf("citation must be a string or an object, got %s", ty.FriendlyName())
	}

	attrs := v.AsValueMap()
	reference := firstString(attrs, "reference", "ref")
	if text := firstString(attrs, "text", "snippet"); text != "" {
		return citation.Literal(reference, text), nil
	}

	if nested, ok := attrs["request"]; ok && !nested.IsNull() && (nested.Type().IsObjectType() || nested.Type().IsMapType()) {
		attrs = nested.AsValueMap()
	}
	return citation.Lookup(reference, citation.Request{
		Book:        firstString(attrs, "book"),
		Chapter:     firstString(attrs, "chapter"),
		Verse:       firstString(attrs, "verse"),
		Translation: firstString(attrs, "translation"),
	}), nil
}

// firstString returns the first named attribute convertible to a non-empty
// string. Numbers convert, so chapter = 23 and chapter = "23" agree.
func firstString(attrs map[string]cty.Value, names ...string) string {
	for _, name := range names {
		v, ok := attrs[name]
		if !ok || v.IsNull() || !v.IsKnown() {
			continue
		}
		s, err := convert.Convert(v, cty.String)
		if err != nil || s.IsNull() {
			continue
		}
		if str := strings.TrimSpace(s.AsString()); str != "" {
			return s.AsString()
		}
	}
	return ""
}
