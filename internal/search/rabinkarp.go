// Package search implements the substring existence test used to match
// content signatures against file bytes.
//
// The search uses the Rabin-Karp rolling hash: each window of the text is
// hashed incrementally and compared to the pattern hash in constant time,
// and candidate windows are verified byte by byte so hash collisions never
// produce a false match.
package search

const (
	// base is the polynomial base of the rolling hash.
	base int64 = 53

	// modulus is the prime the hash is reduced by.
	modulus int64 = 1_000_000_009
)

// Matcher holds a pattern together with its precomputed hash so the same
// pattern can be searched for in many texts without rehashing it.
// A Matcher is immutable and safe for concurrent use.
type Matcher struct {
	pattern []byte
	hash    int64
	// lead is base^(len(pattern)-1) mod modulus, the weight of the byte
	// leaving the window.
	lead int64
}

// Compile prepares a Matcher for pattern. The pattern bytes are copied.
func Compile(pattern []byte) *Matcher {
	p := make([]byte, len(pattern))
	copy(p, pattern)

	m := &Matcher{pattern: p, lead: 1}
	for i := 0; i+1 < len(p); i++ {
		m.lead = (m.lead * base) % modulus
	}
	for _, c := range p {
		m.hash = (base*m.hash + int64(c)) % modulus
	}
	return m
}

// Pattern returns the pattern the Matcher searches for.
func (m *Matcher) Pattern() []byte {
	return m.pattern
}

// Occurs reports whether the pattern appears as a contiguous run of bytes
// in text. An empty pattern occurs in every text; a pattern longer than
// the text never does.
func (m *Matcher) Occurs(text []byte) bool {
	n, k := len(text), len(m.pattern)
	if k == 0 {
		return true
	}
	if k > n {
		return false
	}

	var window int64
	for i := 0; i < k; i++ {
		window = (base*window + int64(text[i])) % modulus
	}

	for i := 0; ; i++ {
		if window == m.hash && m.verify(text[i:i+k]) {
			return true
		}
		if i == n-k {
			return false
		}

		// Drop text[i], append text[i+k].
		window = (base*(window-int64(text[i])*m.lead) + int64(text[i+k])) % modulus
		if window < 0 {
			window += modulus
		}
	}
}

// verify compares a candidate window against the pattern.
func (m *Matcher) verify(window []byte) bool {
	for j := range m.pattern {
		if window[j] != m.pattern[j] {
			return false
		}
	}
	return true
}

// Occurs reports whether pattern appears as a contiguous substring of text.
// It is shorthand for Compile(pattern).Occurs(text).
func Occurs(text, pattern []byte) bool {
	return Compile(pattern).Occurs(text)
}
