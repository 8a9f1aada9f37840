package bot

// MaxMessageLen is the largest message the chat platform accepts.
const MaxMessageLen = 4000

// SplitMessage cuts text into chunks of at most limit runes, never splitting
// a rune. Concatenating the chunks reproduces the input exactly.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLen
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
