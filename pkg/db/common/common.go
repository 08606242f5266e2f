package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrArgumentInvalid = errors.New("invalid arguments")
	ErrSelectorInvalid = errors.New("invalid selector")

	ErrCollectionAlreadyExists = errors.New("this collection already exists")
	ErrCollectionCreateFailed  = errors.New("unable to create the collection")
	ErrCollectionCheckFailed   = errors.New("unable to check if the collection exists")
)

// TimeSeriesOpts configures a time series collection on creation. The time
// and meta field names are fixed for the collection's lifetime once the
// engine accepts them.
type TimeSeriesOpts struct {
	TimeField string
	MetaField string
	// Granularity is one of "seconds", "minutes" or "hours". Empty leaves
	// the engine default.
	Granularity string
	// ExpireAfter in seconds. Zero or negative disables expiry.
	ExpireAfter int64
}

type FindOpts struct {
	Size int
}

// Selector is a storage-agnostic filter. A leaf selector (Sa and Sb nil)
// compares the field K against V with Op; a branch selector combines Sa
// and Sb with a logical Op. The zero value matches every document.
type Selector struct {
	Op SelectorOp
	Sa *Selector
	Sb *Selector
	K  string
	V  any
}

// MatchAll returns a selector matching every document in a collection.
func MatchAll() Selector {
	return Selector{}
}

// MatchesAll reports whether the selector is the match-everything filter.
func (s *Selector) MatchesAll() bool {
	return s.K == "" && s.Sa == nil && s.Sb == nil
}

func (s *Selector) String() string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("op: %v\n", s.Op))
	builder.WriteString("[\n")
	if s.Sa != nil {
		builder.WriteString(fmt.Sprintf("Sa: %v\n", s.Sa))
	}
	if s.Sb != nil {
		builder.WriteString(fmt.Sprintf("Sb: %v\n", s.Sb))
	}
	if s.K != "" {
		builder.WriteString(fmt.Sprintf("%v ", s.K))
	}
	if s.V != nil {
		builder.WriteString(fmt.Sprintf("%v", s.V))
	}
	builder.WriteString("]\n")
	return builder.String()
}

type SelectorOp int

const (
	// comparison ops
	SelectorEq = iota
	SelectorGt
	SelectorGte
	SelectorIn
	SelectorLt
	SelectorLte
	SelectorNe
	SelectorNin
	// logical ops
	SelectorAnd
	SelectorNot
	SelectorNor
	SelectorOr
)
