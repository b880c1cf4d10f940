package sanitize

import "regexp"

// UnsafeInputError carries the user-facing message for a rejected input.
type UnsafeInputError struct {
	Msg string
}

func (e *UnsafeInputError) Error() string { return e.Msg }

// keyword defense against instruction-override attempts. This is a plain
// substring match, not a semantic filter: it over- and under-blocks.
var rxUnsafe = regexp.MustCompile(`(?i)(ignore|bypass|override|forget|system|prompt)`)

// Check returns an *UnsafeInputError when the text contains one of the
// trigger words, nil otherwise. The input is never modified.
func Check(text string) error {
	if rxUnsafe.MatchString(text) {
		return &UnsafeInputError{
			Msg: "Unsafe input detected. Please rephrase your question neutrally and without system commands.",
		}
	}
	return nil
}
