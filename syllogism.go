package mreasoner

import "fmt"

// Syllogism identifies a canonical two-premise reasoning problem: two
// quantifier letters from {A, I, E, O} followed by a figure digit from
// {1, 2, 3, 4}, e.g. "AA1" or "OE3". Identifiers are stateless; the
// premise rendering never touches the child process.
type Syllogism string

// quantifierTemplates maps each quantifier mood to its premise template.
var quantifierTemplates = map[byte]string{
	'A': "All %s are %s",      // universal affirmative
	'I': "Some %s are %s",     // existential affirmative
	'E': "No %s are %s",       // universal negative
	'O': "Some %s are not %s", // existential negative
}

// figureTerms maps each figure to the subject/predicate arrangement of
// the shared term B across the two premises.
var figureTerms = map[byte][2][2]string{
	'1': {{"A", "B"}, {"B", "C"}},
	'2': {{"B", "A"}, {"C", "B"}},
	'3': {{"A", "B"}, {"C", "B"}},
	'4': {{"B", "A"}, {"B", "C"}},
}

// Premises renders the two natural-language premises the engine parses
// for this identifier. Deterministic and pure:
//
//	Syllogism("AA1").Premises() == ("All A are B", "All B are C")
//	Syllogism("OE3").Premises() == ("Some A are not B", "No C are B")
func (s Syllogism) Premises() (string, string, error) {
	if len(s) != 3 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSyllogism, s)
	}
	q1, ok := quantifierTemplates[s[0]]
	if !ok {
		return "", "", fmt.Errorf("%w: quantifier %q in %q", ErrInvalidSyllogism, s[0], s)
	}
	q2, ok := quantifierTemplates[s[1]]
	if !ok {
		return "", "", fmt.Errorf("%w: quantifier %q in %q", ErrInvalidSyllogism, s[1], s)
	}
	fig, ok := figureTerms[s[2]]
	if !ok {
		return "", "", fmt.Errorf("%w: figure %q in %q", ErrInvalidSyllogism, s[2], s)
	}

	p1 := fmt.Sprintf(q1, fig[0][0], fig[0][1])
	p2 := fmt.Sprintf(q2, fig[1][0], fig[1][1])
	return p1, p2, nil
}
