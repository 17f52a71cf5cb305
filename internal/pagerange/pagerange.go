package pagerange

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// None is the sentinel spec meaning "remove nothing".
const None = "none"

// ErrInvalidRangeSpec is returned when a token is not an integer or an A-B range.
var ErrInvalidRangeSpec = errors.New("invalid page range spec")

var allowedChars = regexp.MustCompile(`^[\d\s,-]+$`)

// Validate performs the character check an editor applies before accepting a spec.
// Empty input and the "none" sentinel are valid.
func Validate(spec string) error {
	s := strings.TrimSpace(spec)
	if s == "" || s == None {
		return nil
	}
	if !allowedChars.MatchString(s) {
		return fmt.Errorf("%w: %q contains characters other than digits, commas, dashes and spaces", ErrInvalidRangeSpec, spec)
	}
	return nil
}

// Resolve returns the ascending list of pages kept after removing every page
// named by spec from 1..totalPages.
func Resolve(totalPages int, spec string) ([]int, error) {
	if totalPages < 0 {
		totalPages = 0
	}
	keep := make(map[int]struct{}, totalPages)
	for p := 1; p <= totalPages; p++ {
		keep[p] = struct{}{}
	}

	s := strings.TrimSpace(spec)
	if s != "" && s != None {
		for _, tok := range strings.Split(s, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			from, to, err := parseToken(tok, totalPages)
			if err != nil {
				return nil, err
			}
			// from > to removes nothing; pages outside the document are ignored
			for p := max(from, 1); p <= min(to, totalPages); p++ {
				delete(keep, p)
			}
		}
	}

	out := make([]int, 0, len(keep))
	for p := range keep {
		out = append(out, p)
	}
	sort.Ints(out)
	return out, nil
}

func parseToken(tok string, totalPages int) (int, int, error) {
	if !strings.Contains(tok, "-") {
		n, err := atoi(tok)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRangeSpec, tok)
		}
		return n, n, nil
	}
	a, b, _ := strings.Cut(tok, "-")
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	from, to := 1, totalPages
	var err error
	if a != "" {
		if from, err = atoi(a); err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRangeSpec, tok)
		}
	}
	if b != "" {
		if to, err = atoi(b); err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRangeSpec, tok)
		}
	}
	return from, to, nil
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative page %d", n)
	}
	return n, nil
}

// Label builds the list label shown next to a source: "<name> [All Pages]" or
// "<name> [Removing: <spec>]".
func Label(path, spec string) string {
	name := filepath.Base(path)
	s := strings.TrimSpace(spec)
	if s == "" || s == None {
		return name + " [All Pages]"
	}
	return fmt.Sprintf("%s [Removing: %s]", name, s)
}

// Normalize maps an empty spec to None.
func Normalize(spec string) string {
	s := strings.TrimSpace(spec)
	if s == "" {
		return None
	}
	return s
}
