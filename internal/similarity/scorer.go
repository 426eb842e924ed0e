// Package similarity defines the semantic scoring seam consumed by the
// intent resolver and the pronoun-role guard. The runtime normally
// injects an embedding-backed scorer; the lexical fallback here keeps
// the layer deterministic and dependency-free when none is configured.
package similarity

// TopicScore pairs an anchor phrase with its similarity to the input.
type TopicScore struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

// Scorer ranks anchor phrases against an input text. Implementations
// must return results sorted by descending score and be side-effect
// free; the caller treats the call as synchronous pure computation.
type Scorer interface {
	ScoreTopics(text string, anchors []string) []TopicScore
}
