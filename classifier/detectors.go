package classifier

// NegationDetector decides whether concept is negated within sentence.
// Implementations return a short label such as "Affirmed" or "Negated".
type NegationDetector interface {
	Negation(sentence, concept string) string
}

// ContextDetector classifies who experiences the findings of a sentence
// and when they happen.
type ContextDetector interface {
	Experiencer(sentence string) string
	Temporality(sentence string) string
}
