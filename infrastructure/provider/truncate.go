package provider

// Truncate bounds text to at most maxChars runes, keeping the front of the
// input. Commit subjects and leading diff hunks carry most of the signal,
// so the tail is the safe part to drop. A non-positive maxChars disables
// truncation.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
