package sic

import (
	"strconv"

	"github.com/rotisserie/eris"
)

// Expand returns every n-digit string that starts with token. Tokens already
// n or more characters long are returned unchanged; truncation is the
// cleaner's job. Expansion is purely numeric ("86" gives 86000 to 86999 for
// n=5), so most results are not registered codes.
//
// Filling more than maxWidth trailing digits returns ErrExpandTooWide.
func Expand(token string, n, maxWidth int) (Set, error) {
	if len(token) >= n {
		return NewSet(token), nil
	}

	fill := n - len(token)
	if fill > maxWidth {
		return Set{}, eris.Wrapf(ErrExpandTooWide, "token %q to %d digits (limit %d)", token, n, maxWidth)
	}

	count := 1
	for j := 0; j < fill; j++ {
		count *= 10
	}

	out := make(Set, count)
	for i := 0; i < count; i++ {
		out[token+ZeroPad(strconv.Itoa(i), fill)] = struct{}{}
	}
	return out, nil
}
