package barcode

import (
	"strings"
)

const (
	// GroupSeparator terminates variable-length GS1 fields (ASCII 29).
	GroupSeparator = "\x1d"
	// GroupSeparatorToken is sent by scanners configured to not emit control characters.
	GroupSeparatorToken = "<GS>"
	// DataMatrixPrefix is the GS1 DataMatrix symbology identifier.
	DataMatrixPrefix = "]d2"

	legacyLength = 29
	nhrnFallback = 4
)

// field consumes one application identifier from the front of buf.
// It returns the remaining buffer and whether parsing must stop.
type field struct {
	ai    string
	parse func(id *Identity, buf string) (rest string, stop bool)
}

// aiTable is ordered by tag length so that 4-char AIs win over 2-char prefixes.
var aiTable = []field{
	{"8005", fixedThenSkip(6, func(id *Identity, v string) { id.NHRN = v })},
	{"3103", toEnd(func(id *Identity, v string) { id.Weight = v })},
	{"01", fixed(14, func(id *Identity, v string) { id.GTIN = v })},
	{"17", fixed(6, func(id *Identity, v string) { id.Expiry = v })},
	{"10", untilSeparator(0, func(id *Identity, v string) { id.Batch = v })},
	{"21", untilSeparator(0, func(id *Identity, v string) { id.Serial = v })},
	{"91", untilSeparator(nhrnFallback, func(id *Identity, v string) { id.NHRN = v })},
	{"93", fixedThenSkip(4, func(id *Identity, v string) { id.Check = v })},
	{"92", toEnd(func(id *Identity, v string) { id.Check = v })},
}

// Decode classifies raw and extracts its fields. It never fails: problems are
// reported through Identity.Error.
func Decode(raw string) Identity {
	id := Identity{Raw: raw}

	switch {
	case isEAN13(raw):
		id.Scheme = SchemeEAN13
		id.GTIN = raw
	case len(raw) == legacyLength:
		// Fixed layout wins over the tagged scanner for exactly 29 bytes.
		id.Scheme = SchemeGS1
		id.GTIN = raw[0:14]
		id.Serial = raw[14:21]
		id.MRC = raw[21:25]
		id.Check = raw[25:29]
	case isGS1(raw):
		id.Scheme = SchemeGS1
		scanElements(&id, normalize(raw))
	default:
		id.Scheme = SchemeUnknown
		id.GTIN = raw
	}

	return id
}

func isGS1(raw string) bool {
	return strings.Contains(raw, GroupSeparator) ||
		strings.Contains(raw, GroupSeparatorToken) ||
		strings.HasPrefix(raw, DataMatrixPrefix)
}

func normalize(raw string) string {
	s := strings.TrimPrefix(raw, DataMatrixPrefix)
	return strings.ReplaceAll(s, GroupSeparatorToken, GroupSeparator)
}

func scanElements(id *Identity, buf string) {
	if !strings.Contains(buf, GroupSeparator) {
		id.Error = ErrNoSeparator
		return
	}

	for {
		buf = strings.TrimLeft(buf, GroupSeparator)
		if buf == "" {
			return
		}

		f, ok := match(buf)
		if !ok {
			id.Error = ErrInvalidBarcode
			return
		}

		rest, stop := f.parse(id, buf[len(f.ai):])
		if stop {
			return
		}
		buf = rest
	}
}

func match(buf string) (field, bool) {
	for _, f := range aiTable {
		if strings.HasPrefix(buf, f.ai) {
			return f, true
		}
	}
	return field{}, false
}

func fixed(n int, set func(*Identity, string)) func(*Identity, string) (string, bool) {
	return func(id *Identity, buf string) (string, bool) {
		if len(buf) < n {
			id.Error = ErrInvalidBarcode
			return "", true
		}
		set(id, buf[:n])
		return buf[n:], false
	}
}

func fixedThenSkip(n int, set func(*Identity, string)) func(*Identity, string) (string, bool) {
	read := fixed(n, set)
	return func(id *Identity, buf string) (string, bool) {
		rest, stop := read(id, buf)
		if stop {
			return rest, stop
		}
		return strings.TrimPrefix(rest, GroupSeparator), false
	}
}

// untilSeparator reads up to the next separator. Without one the field runs
// to the end of the buffer, or takes fallback bytes when fallback > 0.
func untilSeparator(fallback int, set func(*Identity, string)) func(*Identity, string) (string, bool) {
	return func(id *Identity, buf string) (string, bool) {
		if i := strings.Index(buf, GroupSeparator); i >= 0 {
			set(id, buf[:i])
			return buf[i+1:], false
		}
		if fallback > 0 && len(buf) > fallback {
			set(id, buf[:fallback])
			return buf[fallback:], false
		}
		set(id, buf)
		return "", false
	}
}

func toEnd(set func(*Identity, string)) func(*Identity, string) (string, bool) {
	return func(id *Identity, buf string) (string, bool) {
		set(id, buf)
		return "", true
	}
}

func isEAN13(s string) bool {
	if len(s) != 13 || !isDigits(s) {
		return false
	}
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(s[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return check == int(s[12]-'0')
}
