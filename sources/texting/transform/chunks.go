package transform

// Chunks splits text into rune-safe pieces of at most size runes.
// Telegram rejects messages over 4096 characters, so long texts go out
// in several messages.
func Chunks(s string, size int) []string {
	if size <= 0 || len(s) == 0 {
		return []string{s}
	}

	runes := []rune(s)
	if len(runes) <= size {
		return []string{s}
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
