package tablequery

import (
	"fmt"
	"strings"
)

// Tri-state filter vocabulary. Tokens outside the vocabulary match
// everything: an unknown word in a verification-flag filter shows all
// rows instead of hiding them, which is the behavior users rely on.
var (
	affirmativeTokens = map[string]bool{
		"ok":       true,
		"true":     true,
		"validado": true,
	}
	negativeTokens = map[string]bool{
		"error":             true,
		"false":             true,
		"datos incorrectos": true,
		"datosincorrectos":  true,
	}
	pendingTokens = map[string]bool{
		"pendiente": true,
		"null":      true,
		"undefined": true,
		"":          true,
	}
)

func normalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func matchTriState(value interface{}, raw string) bool {
	token := normalizeToken(raw)
	switch {
	case affirmativeTokens[token]:
		return value == true
	case negativeTokens[token]:
		return value == false
	case pendingTokens[token]:
		return value == nil
	default:
		return true
	}
}

func matchText(value interface{}, raw string) bool {
	needle := normalizeToken(raw)
	if value == nil {
		// A record with no data in the field only matches when the user
		// is explicitly filtering for pending rows.
		return pendingTokens[needle]
	}
	return strings.Contains(strings.ToLower(stringify(value)), needle)
}

func stringify(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
