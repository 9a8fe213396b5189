package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "tabprep/internal/errors"
	"tabprep/pkg/contracts/domain"
)

// Selection is a resolved, duplicate-free list of column positions
type Selection []int

// Names returns the selected column names in selection order
func (s Selection) Names(t *domain.Table) []string {
	names := make([]string, len(s))
	for i, j := range s {
		names[i] = t.Columns[j].Name
	}
	return names
}

// ParseSelection splits a comma-separated identifier list and trims each
// token. Empty tokens are dropped.
func ParseSelection(input string) []string {
	var ids []string
	for _, tok := range strings.Split(input, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			ids = append(ids, tok)
		}
	}
	return ids
}

// ResolveSelection maps identifiers to column positions. A token made only of
// decimal digits is a zero-based index; any other token is an exact column
// name. Repeats keep their first position. One unresolvable token fails the
// whole selection.
func ResolveSelection(t *domain.Table, ids []string) (Selection, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewSelectionError("no columns selected")
	}

	sel := make(Selection, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		j, err := resolveOne(t, id)
		if err != nil {
			return nil, err
		}
		if !seen[j] {
			seen[j] = true
			sel = append(sel, j)
		}
	}
	return sel, nil
}

func resolveOne(t *domain.Table, id string) (int, error) {
	if isDigits(id) {
		j, err := strconv.Atoi(id)
		if err != nil || j >= t.NumCols() {
			return 0, apperrors.NewSelectionError(
				fmt.Sprintf("column index %s is out of range; the table has %d columns", id, t.NumCols())).
				WithContext("identifier", id)
		}
		return j, nil
	}
	if j := t.Index(id); j >= 0 {
		return j, nil
	}
	return 0, apperrors.NewSelectionError(fmt.Sprintf("column %q does not exist", id)).
		WithContext("identifier", id)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Kind is a column transformation method
type Kind int

const (
	KindZScore Kind = iota + 1
	KindMinMax
	KindBoxCox
	KindCLR
)

// String returns the menu label of the kind
func (k Kind) String() string {
	switch k {
	case KindZScore:
		return "zscore"
	case KindMinMax:
		return "minmax"
	case KindBoxCox:
		return "boxcox"
	case KindCLR:
		return "clr"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the four supported methods
func (k Kind) Valid() bool {
	return k >= KindZScore && k <= KindCLR
}

// Check returns a METHOD error when k is not a supported method
func (k Kind) Check() error {
	if k.Valid() {
		return nil
	}
	return apperrors.NewMethodError(fmt.Sprintf("unsupported transform %d; choose 1 to 4", int(k)))
}

var kindNames = map[string]Kind{
	"zscore":             KindZScore,
	"z-score":            KindZScore,
	"minmax":             KindMinMax,
	"min-max":            KindMinMax,
	"boxcox":             KindBoxCox,
	"box-cox":            KindBoxCox,
	"clr":                KindCLR,
	"centered-log-ratio": KindCLR,
}

// ParseKind accepts a menu number 1-4 or a method name
func ParseKind(input string) (Kind, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if k, ok := kindNames[s]; ok {
		return k, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.NewMethodError("please enter a number").WithContext("input", input)
	}
	if k := Kind(n); k.Valid() {
		return k, nil
	}
	return 0, apperrors.NewMethodError("please enter a number between 1 and 4").WithContext("input", input)
}
