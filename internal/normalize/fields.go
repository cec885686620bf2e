package normalize

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"occupancy/internal/models"

	"github.com/shopspring/decimal"
)

// fields indexes a raw record by a loose key: lower case with '_', '-', ' '
// and '.' removed, so guest_name, guestName and GuestName are one field.
type fields map[string]any

func looseKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range strings.ToLower(k) {
		switch r {
		case '_', '-', ' ', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// index folds raw keys in sorted order, so when two keys collapse to one
// loose key the lexically smallest always wins.
func index(raw models.RawRecord) fields {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := make(fields, len(raw))
	for _, k := range keys {
		key := looseKey(k)
		if _, taken := f[key]; taken {
			continue
		}
		f[key] = raw[k]
	}
	return f
}

// value returns the first present, non-nil value among aliases.
func (f fields) value(aliases ...string) (any, bool) {
	for _, a := range aliases {
		if v, ok := f[a]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// str returns the first alias with a non-empty text form.
func (f fields) str(aliases ...string) string {
	for _, a := range aliases {
		if s := stringify(f[a]); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// toDecimal coerces numbers, json.Number and numeric text. Currency symbols
// and thousands separators are dropped; a lone comma followed by one or two
// digits is read as a decimal comma.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(t), true
	case float32:
		return toDecimal(float64(t))
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case int32:
		return decimal.NewFromInt(int64(t)), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		return parseAmount(t)
	default:
		return decimal.Decimal{}, false
	}
}

func parseAmount(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return decimal.Decimal{}, false
	}

	switch {
	case strings.Contains(cleaned, ".") && strings.Contains(cleaned, ","):
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case strings.Count(cleaned, ",") == 1:
		if idx := strings.Index(cleaned, ","); len(cleaned)-idx-1 <= 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	default:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// count reads a non-negative whole number such as a party size.
func (f fields) count(aliases ...string) *int {
	for _, a := range aliases {
		v, ok := f[a]
		if !ok || v == nil {
			continue
		}
		d, ok := toDecimal(v)
		if !ok || d.IsNegative() {
			continue
		}
		n := int(d.IntPart())
		return &n
	}
	return nil
}

// amount reads the first parseable money field.
func (f fields) amount(aliases ...string) *float64 {
	for _, a := range aliases {
		v, ok := f[a]
		if !ok || v == nil {
			continue
		}
		if d, ok := toDecimal(v); ok {
			return float(d)
		}
	}
	return nil
}

// chargesTotal sums a list of charge lines, each a number or an object with
// an amount. Nil when nothing in the list is parseable.
func (f fields) chargesTotal(aliases ...string) *float64 {
	v, ok := f.value(aliases...)
	if !ok {
		return nil
	}
	lines, ok := v.([]any)
	if !ok {
		return nil
	}

	total := decimal.Zero
	found := false
	for _, line := range lines {
		var amount any = line
		if m, ok := line.(map[string]any); ok {
			amount, _ = index(m).value("amount", "value", "total", "price")
		}
		if d, ok := toDecimal(amount); ok {
			total = total.Add(d)
			found = true
		}
	}
	if !found {
		return nil
	}
	return float(total)
}

func float(d decimal.Decimal) *float64 {
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
