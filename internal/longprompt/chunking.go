package longprompt

import "strings"

// semanticBlocks splits text at markdown heading boundaries while keeping
// fenced code blocks intact even if they contain lines starting with '#'.
func semanticBlocks(text string) []string {
	lines := strings.Split(text, "\n")

	var blocks []string
	var current strings.Builder
	inFence := false

	flush := func() {
		if current.Len() > 0 {
			blocks = append(blocks, strings.TrimRight(current.String(), "\n"))
			current.Reset()
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}

		if !inFence && strings.HasPrefix(trimmed, "#") && current.Len() > 0 {
			flush()
		}

		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()

	if len(blocks) == 0 {
		return []string{text}
	}
	return blocks
}

// packBlocks greedily packs semantic blocks into chunks of about
// chunkChars, carrying overlapChars of the previous chunk's tail forward
// so a boundary split doesn't sever a cross-block reference.
func packBlocks(blocks []string, chunkChars, overlapChars int) []string {
	if len(blocks) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	for _, block := range blocks {
		if current.Len() > 0 && current.Len()+len(block) > chunkChars {
			chunks = append(chunks, current.String())
			tail := overlapTail(current.String(), overlapChars)
			current.Reset()
			current.WriteString(tail)
		}
		current.WriteString(block)
		current.WriteString("\n\n")
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func overlapTail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return ""
	}
	return s[len(s)-n:]
}
