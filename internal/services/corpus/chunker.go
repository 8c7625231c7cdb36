package corpus

import (
	"regexp"
	"strings"
)

var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// SentenceChunker splits text into overlapping windows of whole sentences.
// Overlap keeps boundary context so a fact straddling two chunks is fully
// present in at least one of them.
type SentenceChunker struct {
	SentencesPerChunk int
	OverlapSentences  int
}

// NewSentenceChunker validates and builds a chunker. Overlap is capped below
// the chunk size so the window always advances.
func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk < 1 {
		sentencesPerChunk = 1
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{
		SentencesPerChunk: sentencesPerChunk,
		OverlapSentences:  overlapSentences,
	}
}

// Chunk splits the text into sentence windows. Text without terminal
// punctuation is treated as a single sentence.
func (c *SentenceChunker) Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := c.splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	step := c.SentencesPerChunk - c.OverlapSentences
	var chunks []string
	for start := 0; start < len(sentences); start += step {
		end := start + c.SentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunk := strings.TrimSpace(strings.Join(sentences[start:end], " "))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(sentences) {
			break
		}
	}
	return chunks
}

func (c *SentenceChunker) splitSentences(text string) []string {
	indexes := sentenceRe.FindAllStringIndex(text, -1)
	if len(indexes) == 0 {
		return []string{text}
	}

	sentences := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		if s := strings.TrimSpace(text[idx[0]:idx[1]]); s != "" {
			sentences = append(sentences, s)
		}
	}

	// Keep any trailing text without terminal punctuation
	if tail := strings.TrimSpace(text[indexes[len(indexes)-1][1]:]); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}
