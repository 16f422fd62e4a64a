package application

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/ericfisherdev/catalogapi/internal/domain/model"
)

// ValidationError describes the first rule a payload violated. Its message is
// safe to return to clients.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%q %s", e.Path, e.Message)
}

func invalid(path, format string, args ...any) *ValidationError {
	return &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// PayloadKey wraps a product payload submitted as a form field or nested object.
const PayloadKey = "products"

type stringRule struct {
	key    string
	minLen int
}

// Field order matters: validation reports the first failing field in this order.
var productStringRules = []stringRule{
	{key: "name", minLen: 3},
	{key: "category", minLen: 3},
	{key: "color", minLen: 3},
	{key: "size", minLen: 1},
}

var filterRules = []stringRule{
	{key: "category", minLen: 3},
	{key: "color", minLen: 3},
	{key: "size", minLen: 1},
}

var productKeys = map[string]struct{}{
	"name": {}, "category": {}, "color": {}, "size": {}, "image_url": {}, "price": {},
}

// ParseProductPayload validates a decoded request body and converts it to
// products. The payload is a single product object or a non-empty array of
// them. An object carrying a "products" key is unwrapped first, and a string
// value is decoded as JSON; a string that is not JSON is left as is and
// fails validation.
func ParseProductPayload(raw any) ([]model.Product, error) {
	payload := unwrapPayload(raw)

	switch v := payload.(type) {
	case map[string]any:
		p, err := validateProduct(v, "")
		if err != nil {
			return nil, err
		}
		return []model.Product{p}, nil
	case []any:
		if len(v) == 0 {
			return nil, invalid("value", "must contain at least 1 items")
		}
		products := make([]model.Product, 0, len(v))
		for i, item := range v {
			prefix := "[" + strconv.Itoa(i) + "]"
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, invalid(prefix, "must be of type object")
			}
			p, err := validateProduct(obj, prefix+".")
			if err != nil {
				return nil, err
			}
			products = append(products, p)
		}
		return products, nil
	case nil:
		return nil, invalid("value", "is required")
	default:
		return nil, invalid("value", "does not match any of the allowed types")
	}
}

func unwrapPayload(raw any) any {
	payload := raw
	if obj, ok := raw.(map[string]any); ok {
		if inner, ok := obj[PayloadKey]; ok && inner != nil && inner != "" {
			payload = inner
		}
	}

	if s, ok := payload.(string); ok {
		var decoded any
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		if err := dec.Decode(&decoded); err == nil && !dec.More() {
			payload = decoded
		}
	}

	return payload
}

func validateProduct(obj map[string]any, prefix string) (model.Product, error) {
	var p model.Product

	values := make(map[string]string, len(productStringRules))
	for _, rule := range productStringRules {
		s, err := requiredString(obj, rule, prefix)
		if err != nil {
			return p, err
		}
		values[rule.key] = s
	}

	imageURL, err := requiredURI(obj, "image_url", prefix)
	if err != nil {
		return p, err
	}

	price, err := positiveNumber(obj, "price", prefix)
	if err != nil {
		return p, err
	}

	if key, ok := firstUnknownKey(obj, productKeys); ok {
		return p, invalid(prefix+key, "is not allowed")
	}

	p.Name = values["name"]
	p.Category = values["category"]
	p.Color = values["color"]
	p.Size = values["size"]
	p.ImageURL = imageURL
	p.Price = price
	return p, nil
}

func requiredString(obj map[string]any, rule stringRule, prefix string) (string, error) {
	path := prefix + rule.key
	v, ok := obj[rule.key]
	if !ok || v == nil {
		return "", invalid(path, "is required")
	}
	s, ok := v.(string)
	if !ok {
		return "", invalid(path, "must be a string")
	}
	return checkString(path, s, rule.minLen)
}

func checkString(path, s string, minLen int) (string, error) {
	if s == "" {
		return "", invalid(path, "is not allowed to be empty")
	}
	if n := utf16Len(s); n < minLen {
		return "", invalid(path, "length must be at least %d characters long", minLen)
	}
	return s, nil
}

// utf16Len counts UTF-16 code units, so characters outside the Basic
// Multilingual Plane count twice.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func requiredURI(obj map[string]any, key, prefix string) (string, error) {
	s, err := requiredString(obj, stringRule{key: key, minLen: 1}, prefix)
	if err != nil {
		return "", err
	}
	if !isURI(s) {
		return "", invalid(prefix+key, "must be a valid uri")
	}
	return s, nil
}

// isURI accepts absolute URIs: a scheme followed by a non-empty remainder,
// with no whitespace.
func isURI(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != "" || u.Path != ""
}

func positiveNumber(obj map[string]any, key, prefix string) (float64, error) {
	path := prefix + key
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, invalid(path, "is required")
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, invalid(path, "must be a number")
		}
		f = parsed
	case string:
		// Form fields always arrive as strings.
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || strings.TrimSpace(n) == "" {
			return 0, invalid(path, "must be a number")
		}
		f = parsed
	default:
		return 0, invalid(path, "must be a number")
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(path, "must be a number")
	}
	if f <= 0 {
		return 0, invalid(path, "must be a positive number")
	}
	return f, nil
}

func firstUnknownKey(obj map[string]any, allowed map[string]struct{}) (string, bool) {
	var unknown []string
	for k := range obj {
		if _, ok := allowed[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return "", false
	}
	sort.Strings(unknown)
	return unknown[0], true
}

// ParseProductFilter validates list query parameters. Every key is optional;
// present keys must carry exactly one non-empty value meeting its minimum
// length, and unknown keys are rejected.
func ParseProductFilter(query url.Values) (model.ProductFilter, error) {
	var f model.ProductFilter
	values := make(map[string]string, len(filterRules))

	for _, rule := range filterRules {
		vs, ok := query[rule.key]
		if !ok {
			continue
		}
		if len(vs) != 1 {
			return f, invalid(rule.key, "must be a string")
		}
		s, err := checkString(rule.key, vs[0], rule.minLen)
		if err != nil {
			return f, err
		}
		values[rule.key] = s
	}

	allowed := make(map[string]struct{}, len(filterRules))
	for _, rule := range filterRules {
		allowed[rule.key] = struct{}{}
	}
	for _, k := range sortedKeys(query) {
		if _, ok := allowed[k]; !ok {
			return f, invalid(k, "is not allowed")
		}
	}

	f.Category = values["category"]
	f.Color = values["color"]
	f.Size = values["size"]
	return f, nil
}

func sortedKeys(query url.Values) []string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
