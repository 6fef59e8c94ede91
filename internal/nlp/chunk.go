package nlp

var possessives = toSet("my our your his her its their")

// chunkNouns groups determiners, modifiers and nouns into base noun phrases.
// Personal pronouns form single-token chunks.
func chunkNouns(text string, tokens []Token) []Chunk {
	var chunks []Chunk

	i := 0
	for i < len(tokens) {
		t := tokens[i]

		if t.POS == PRON {
			if _, ok := possessives[t.Lemma]; !ok {
				chunks = append(chunks, newChunk(text, tokens, i, i+1, i))
				i++
				continue
			}
		}

		if !startsChunk(t) {
			i++
			continue
		}

		j := i
		if t.POS == DET || t.POS == PRON {
			j++
		}
		for j < len(tokens) && isModifier(tokens[j].POS) {
			j++
		}

		head := -1
		for k := j - 1; k >= i; k-- {
			if tokens[k].POS == NOUN || tokens[k].POS == PROPN {
				head = k
				break
			}
		}

		if head == -1 {
			i++
			continue
		}

		chunks = append(chunks, newChunk(text, tokens, i, head+1, head))
		i = head + 1
	}

	return chunks
}

func startsChunk(t Token) bool {
	switch t.POS {
	case DET, PRON:
		return true
	}
	return isModifier(t.POS)
}

func isModifier(pos string) bool {
	switch pos {
	case ADJ, NUM, NOUN, PROPN:
		return true
	}
	return false
}

func newChunk(text string, tokens []Token, start, end, root int) Chunk {
	return Chunk{
		Text:  text[tokens[start].Start:tokens[end-1].End],
		Start: start,
		End:   end,
		Root:  root,
	}
}
