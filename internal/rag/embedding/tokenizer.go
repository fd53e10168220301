package embedding

// WordTokenizer is a whitespace tokenizer with hash-derived token ids in a
// BERT-shaped frame: [CLS] words... [SEP], zero-padded to maxTokens.
type WordTokenizer struct{}

const (
	clsTokenId = 101
	sepTokenId = 102
	vocabSize  = 30000
)

func (t *WordTokenizer) Tokenize(text string, maxTokens int) (inputIds, attentionMask, tokenTypeIds []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIds = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIds = make([]int64, maxTokens)

	inputIds[0] = clsTokenId
	attentionMask[0] = 1

	pos := 1
	for _, word := range splitWords(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIds[pos] = int64(hashWord(word) % vocabSize)
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIds[pos] = sepTokenId
		attentionMask[pos] = 1
	}
	return inputIds, attentionMask, tokenTypeIds
}

func splitWords(text string) []string {
	var words []string
	word := ""
	for _, r := range text {
		switch r {
		case ' ', '\n', '\t', '\r':
			if word != "" {
				words = append(words, word)
				word = ""
			}
		default:
			word += string(r)
		}
	}
	if word != "" {
		words = append(words, word)
	}
	return words
}

func hashWord(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
