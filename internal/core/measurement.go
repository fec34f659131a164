package core

import "strings"

var measurementReplacer = strings.NewReplacer("\uff1a", ":")

// NormalizeMeasurementText rewrites full-width colons to ':', drops a single
// space following a colon, and rewrites full-width spaces to ' '. The steps
// run in that order.
func NormalizeMeasurementText(text string) string {
	text = measurementReplacer.Replace(text)
	text = strings.ReplaceAll(text, ": ", ":")
	return strings.ReplaceAll(text, "\u3000", " ")
}

// ParseMeasurements parses a measurement cell such as "肩幅:42.5 胸囲:104".
//
// Each whitespace-separated token must contain exactly one colon with a
// non-empty name and value. Pairs are returned in token order and duplicate
// names are kept.
func ParseMeasurements(text string) (MeasurementSet, error) {
	tokens := strings.Fields(NormalizeMeasurementText(text))
	if len(tokens) == 0 {
		return nil, ErrEmptyMeasurementText
	}

	set := make(MeasurementSet, 0, len(tokens))
	for _, token := range tokens {
		name, value, ok := splitToken(token)
		if !ok {
			return nil, &MeasurementError{Text: text, Token: token, Err: ErrInvalidMeasurementToken}
		}
		set = append(set, Measurement{Name: name, Value: value})
	}
	return set, nil
}

func splitToken(token string) (name, value string, ok bool) {
	if strings.Count(token, ":") != 1 {
		return "", "", false
	}
	name, value, _ = strings.Cut(token, ":")
	if name == "" || value == "" {
		return "", "", false
	}
	return name, value, true
}
