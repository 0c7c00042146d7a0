package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Digest is the hex form of a 128-bit content hash over a canonical
// serialization of one category of a content unit's data.
type Digest string

// Location is any record with a canonical string form combining day, time,
// and place identity.
type Location interface {
	Canonical() string
}

// Asset is any media record that can produce a distinguishing string.
type Asset interface {
	Distinguisher() string
}

// Locations digests a unit's associated locations. The input is copied and
// sorted by canonical form before hashing: resolution order from the
// underlying store is unspecified and must not affect the digest.
func Locations[L Location](locs []L) Digest {
	forms := make([]string, 0, len(locs))
	for _, loc := range locs {
		forms = append(forms, loc.Canonical())
	}
	sort.Strings(forms)
	return sequence(forms)
}

// Media digests a unit's associated media in accumulation order. Order is
// deliberately preserved: association depends on the processing order of
// sub-units versus the parent.
func Media[A Asset](assets []A) Digest {
	forms := make([]string, 0, len(assets))
	for _, asset := range assets {
		forms = append(forms, asset.Distinguisher())
	}
	return sequence(forms)
}

// Summaries digests day summaries keyed by day, serialized by sorted day.
func Summaries(byDay map[string]string) Digest {
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	forms := make([]string, 0, len(days)*2)
	for _, day := range days {
		forms = append(forms, day, byDay[day])
	}
	return sequence(forms)
}

// Subs digests the display names of a unit's direct sub-units in existing
// order. Nested location, media, and summary data is not folded in; changes
// inside a sub-unit surface through that sub-unit's own record.
func Subs(names []string) Digest {
	return sequence(names)
}

// Text digests the unit's description and summary fields as raw bytes with
// no normalization.
func Text(description, summary string) Digest {
	h := md5.New()
	h.Write([]byte(description))
	h.Write([]byte(summary))
	return Digest(hex.EncodeToString(h.Sum(nil)))
}

// Context digests a page rendering context: stringified (key, value) pairs
// serialized by sorted key, recursing into nested mappings the same way.
func Context(ctx map[string]any) Digest {
	var b strings.Builder
	writeMapping(&b, ctx)
	h := md5.Sum([]byte(b.String()))
	return Digest(hex.EncodeToString(h[:]))
}

func writeMapping(b *strings.Builder, m map[string]any) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		b.WriteString(key)
		b.WriteByte(0)
		writeValue(b, m[key])
		b.WriteByte(0)
	}
}

func writeValue(b *strings.Builder, value any) {
	switch v := value.(type) {
	case map[string]any:
		b.WriteByte('{')
		writeMapping(b, v)
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for _, item := range v {
			writeValue(b, item)
			b.WriteByte(0)
		}
		b.WriteByte(']')
	case string:
		b.WriteString(v)
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case int:
		b.WriteString(strconv.Itoa(v))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	case nil:
		b.WriteString("null")
	default:
		fmt.Fprint(b, v)
	}
}

// sequence hashes elements separated by NUL so that adjacent elements cannot
// collide by concatenation. An empty sequence digests the empty input, which
// is well defined and stable across runs.
func sequence(elems []string) Digest {
	h := md5.New()
	for _, elem := range elems {
		h.Write([]byte(elem))
		h.Write([]byte{0})
	}
	return Digest(hex.EncodeToString(h.Sum(nil)))
}
