package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AgeRangeLabel names one of the fixed dashboard age brackets.
type AgeRangeLabel string

// Age brackets in reporting order.
const (
	AgeRangeChild  AgeRangeLabel = "0-18"
	AgeRangeYoung  AgeRangeLabel = "19-35"
	AgeRangeAdult  AgeRangeLabel = "36-60"
	AgeRangeSenior AgeRangeLabel = "60+"
)

// AgeRangeLabels lists every bracket in reporting order.
var AgeRangeLabels = [...]AgeRangeLabel{
	AgeRangeChild,
	AgeRangeYoung,
	AgeRangeAdult,
	AgeRangeSenior,
}

// AgeRangeFor classifies a non-negative age. Boundaries are inclusive and
// evaluated in order, first match wins.
func AgeRangeFor(age int) (AgeRangeLabel, error) {
	switch {
	case age < 0:
		return "", fmt.Errorf("%w: %d is negative", ErrInvalidAge, age)
	case age <= 18:
		return AgeRangeChild, nil
	case age <= 35:
		return AgeRangeYoung, nil
	case age <= 60:
		return AgeRangeAdult, nil
	default:
		return AgeRangeSenior, nil
	}
}

// AgeRangeHistogram counts ages per bracket. All four brackets are always
// present; the zero value reports zero for each of them.
type AgeRangeHistogram struct {
	counts [len(AgeRangeLabels)]int
}

// Count returns the number of ages counted in the given bracket.
// Unknown labels report 0.
func (h AgeRangeHistogram) Count(label AgeRangeLabel) int {
	for i, l := range AgeRangeLabels {
		if l == label {
			return h.counts[i]
		}
	}
	return 0
}

// Total returns the sum of all bracket counts.
func (h AgeRangeHistogram) Total() int {
	total := 0
	for _, c := range h.counts {
		total += c
	}
	return total
}

// Map returns the histogram as a plain map keyed by label.
func (h AgeRangeHistogram) Map() map[AgeRangeLabel]int {
	m := make(map[AgeRangeLabel]int, len(AgeRangeLabels))
	for i, l := range AgeRangeLabels {
		m[l] = h.counts[i]
	}
	return m
}

func (h *AgeRangeHistogram) add(label AgeRangeLabel) {
	for i, l := range AgeRangeLabels {
		if l == label {
			h.counts[i]++
			return
		}
	}
}

// MarshalJSON encodes the histogram as an object whose keys appear in bracket
// order, e.g. {"0-18":2,"19-35":5,"36-60":3,"60+":1}.
func (h AgeRangeHistogram) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range AgeRangeLabels {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(l))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", h.counts[i])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by bracket label. Missing labels
// decode as zero; unknown labels are rejected.
func (h *AgeRangeHistogram) UnmarshalJSON(b []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out AgeRangeHistogram
	for k, v := range raw {
		found := false
		for i, l := range AgeRangeLabels {
			if string(l) == k {
				if v < 0 {
					return fmt.Errorf("%w: negative count for %q", ErrValidation, k)
				}
				out.counts[i] = v
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: unknown age range %q", ErrValidation, k)
		}
	}
	*h = out
	return nil
}

// BucketAges counts ages into the four fixed brackets. The result does not
// depend on input order, and the bracket counts sum to len(ages).
// A negative age fails the whole call with ErrInvalidAge.
func BucketAges(ages []int) (AgeRangeHistogram, error) {
	var h AgeRangeHistogram
	for _, age := range ages {
		label, err := AgeRangeFor(age)
		if err != nil {
			return AgeRangeHistogram{}, err
		}
		h.add(label)
	}
	return h, nil
}

// BucketBirthDates derives each age as of ref and buckets the results.
func BucketBirthDates(births []BirthDate, ref BirthDate) (AgeRangeHistogram, error) {
	ages := make([]int, 0, len(births))
	for _, b := range births {
		age, err := ComputeAge(b, ref)
		if err != nil {
			return AgeRangeHistogram{}, err
		}
		ages = append(ages, age)
	}
	return BucketAges(ages)
}
