package response

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"MorningDigest/internal/domain"
)

// CanonicalKey names the list member of the canonical collection.
const CanonicalKey = "papers"

// MaxScore is the top of the score scale; decoded scores are clamped to
// [0, MaxScore].
const MaxScore = 10

// Normalize coerces a JSON document into the canonical record collection.
// Shapes are tried in order: bare list, object with the canonical key,
// object with any list-valued member (first in document order), else empty.
// Entries that are not objects, or do not decode as a record, are discarded
// and counted.
func Normalize(raw []byte) domain.AnalysisSet {
	items, ok := decodeList(raw)
	if !ok {
		items, ok = decodeCanonical(raw)
	}
	if !ok {
		items, ok = decodeFirstList(raw)
	}
	if !ok {
		return domain.AnalysisSet{}
	}

	var set domain.AnalysisSet
	for _, item := range items {
		rec, ok := decodeRecord(item)
		if !ok {
			set.Discarded++
			continue
		}
		set.Records = append(set.Records, rec)
	}
	return set
}

func decodeList(raw []byte) ([]json.RawMessage, bool) {
	if firstByte(raw) != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func decodeCanonical(raw []byte) ([]json.RawMessage, bool) {
	if firstByte(raw) != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	member, ok := obj[CanonicalKey]
	if !ok {
		return nil, false
	}
	return decodeList(member)
}

// decodeFirstList walks object members in document order, which a Go map
// cannot preserve, and returns the first list-valued one.
func decodeFirstList(raw []byte) ([]json.RawMessage, bool) {
	if firstByte(raw) != '{' {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			if err == io.EOF {
				break
			}
			return nil, false
		}
		if items, ok := decodeList(value); ok {
			return items, true
		}
	}
	return nil, false
}

type wireRecord struct {
	ID           json.RawMessage `json:"id"`
	Score        json.RawMessage `json:"score"`
	Discovery    string          `json:"discovery"`
	Insight      string          `json:"insight"`
	Action       string          `json:"action"`
	CanImplement json.RawMessage `json:"can_implement"`
	Tags         json.RawMessage `json:"tags"`
}

func decodeRecord(raw json.RawMessage) (domain.Analysis, bool) {
	if firstByte(raw) != '{' {
		return domain.Analysis{}, false
	}
	var w wireRecord
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Analysis{}, false
	}

	return domain.Analysis{
		ID:           domain.CanonicalID(looseString(w.ID)),
		Score:        clampScore(looseInt(w.Score)),
		Discovery:    strings.TrimSpace(w.Discovery),
		Insight:      strings.TrimSpace(w.Insight),
		Action:       strings.TrimSpace(w.Action),
		CanImplement: looseBool(w.CanImplement),
		Tags:         looseTags(w.Tags),
	}, true
}

func looseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func looseInt(raw json.RawMessage) int {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(math.Round(f))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(strings.SplitN(s, "/", 2)[0])
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return int(math.Round(v))
		}
	}
	return 0
}

func clampScore(v int) int {
	return min(max(v, 0), MaxScore)
}

func looseBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, _ := strconv.ParseBool(strings.TrimSpace(s))
		return v
	}
	return false
}

func looseTags(raw json.RawMessage) []string {
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		tags := make([]string, 0, len(list))
		seen := map[string]struct{}{}
		for _, v := range list {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if _, dup := seen[s]; s == "" || dup {
				continue
			}
			seen[s] = struct{}{}
			tags = append(tags, s)
		}
		return tags
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && strings.TrimSpace(single) != "" {
		return []string{strings.TrimSpace(single)}
	}
	return nil
}

func firstByte(raw []byte) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
