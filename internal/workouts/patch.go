package workouts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type activitySetter func(a *Activity)

type fieldParser func(p *ActivityPatch, raw json.RawMessage) error

// activityFields is the whitelist of keys a client may send for an activity.
var activityFields = map[string]fieldParser{
	"exercise":       parseExercise,
	"sets":           intField(func(a *Activity, v *int) { a.Sets = v }),
	"reps":           intField(func(a *Activity, v *int) { a.Reps = v }),
	"weight":         intField(func(a *Activity, v *int) { a.Weight = v }),
	"duration":       intField(func(a *Activity, v *int) { a.Duration = v }),
	"distance":       textField(true, func(a *Activity, v *string) { a.Distance = v }),
	"weight_units":   textField(false, func(a *Activity, v *string) { a.WeightUnits = v }),
	"duration_units": textField(false, func(a *Activity, v *string) { a.DurationUnits = v }),
	"distance_units": textField(false, func(a *Activity, v *string) { a.DistanceUnits = v }),
}

// ActivityPatch is a validated set of activity field changes.
// The exercise is kept by name, resolving it is up to the caller.
type ActivityPatch struct {
	Exercise *string
	Fields   []string
	setters  []activitySetter
}

// ParseActivityPatch validates a client body against the field whitelist.
// Unknown keys fail with ErrUnknownField, bad values with ErrInvalidInput.
func ParseActivityPatch(body map[string]json.RawMessage) (ActivityPatch, error) {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var p ActivityPatch
	for _, k := range keys {
		parse, ok := activityFields[k]
		if !ok {
			return ActivityPatch{}, fmt.Errorf("%w: %s", ErrUnknownField, k)
		}
		if err := parse(&p, body[k]); err != nil {
			return ActivityPatch{}, fmt.Errorf("%w: %s: %s", ErrInvalidInput, k, err)
		}
		p.Fields = append(p.Fields, k)
	}
	return p, nil
}

// DecodeActivityPatch parses a JSON object body.
func DecodeActivityPatch(data []byte) (ActivityPatch, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return ActivityPatch{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	return ParseActivityPatch(body)
}

func (p ActivityPatch) IsEmpty() bool {
	return len(p.Fields) == 0
}

// Apply writes the measurement fields onto a. The exercise is not touched.
func (p ActivityPatch) Apply(a *Activity) {
	for _, set := range p.setters {
		set(a)
	}
}

func parseExercise(p *ActivityPatch, raw json.RawMessage) error {
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return fmt.Errorf("exercise must be a name")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("exercise must not be empty")
	}
	p.Exercise = &name
	return nil
}

func intField(set func(a *Activity, v *int)) fieldParser {
	return func(p *ActivityPatch, raw json.RawMessage) error {
		v, err := optionalInt(raw)
		if err != nil {
			return err
		}
		p.setters = append(p.setters, func(a *Activity) { set(a, v) })
		return nil
	}
}

func textField(acceptNumber bool, set func(a *Activity, v *string)) fieldParser {
	return func(p *ActivityPatch, raw json.RawMessage) error {
		v, err := optionalText(raw, acceptNumber)
		if err != nil {
			return err
		}
		p.setters = append(p.setters, func(a *Activity) { set(a, v) })
		return nil
	}
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// optionalInt accepts integral numbers and numeric strings. null and "" mean absent.
func optionalInt(raw json.RawMessage) (*int, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}

	var s string
	switch val := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		s = val.String()
	case string:
		s = strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("expected a number")
	}

	if i, err := strconv.Atoi(s); err == nil {
		if i > math.MaxInt32 || i < math.MinInt32 {
			return nil, fmt.Errorf("expected a whole number, got %q", s)
		}
		return &i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil, fmt.Errorf("expected a whole number, got %q", s)
	}
	i := int(f)
	return &i, nil
}

func optionalText(raw json.RawMessage, acceptNumber bool) (*string, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	case json.Number:
		if acceptNumber {
			s := val.String()
			return &s, nil
		}
	}
	return nil, fmt.Errorf("expected a string")
}
