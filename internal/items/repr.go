// Package items defines the units of content that flow between pipeline stages.
package items

import "fmt"

// Repr identifies one representation (view) of an item's content.
type Repr int

const (
	ReprDefault Repr = iota
	ReprSentenceOriginal
	ReprSentence // current sentence
	ReprAST
	ReprLogicPlain    // MMT without notations
	ReprLogicStandard // MMT with notations
	ReprLogicELPI
	ReprGraphDot
	ReprGraphSVG
	// ReprHTML is a rendered view attached alongside another representation.
	// It can only be set through SetHTML or the WithHTML option.
	ReprHTML
)

var reprNames = map[Repr]string{
	ReprHTML:             "html",
	ReprDefault:          "default",
	ReprSentenceOriginal: "sentence-original",
	ReprSentence:         "sentence-current",
	ReprAST:              "ast",
	ReprLogicPlain:       "logic-plain",
	ReprLogicStandard:    "logic-standard",
	ReprLogicELPI:        "logic-elpi",
	ReprGraphDot:         "graph-dot",
	ReprGraphSVG:         "graph-svg",
}

// AllReprs lists every representation in declaration order.
func AllReprs() []Repr {
	return []Repr{
		ReprDefault, ReprSentenceOriginal, ReprSentence, ReprAST, ReprLogicPlain,
		ReprLogicStandard, ReprLogicELPI, ReprGraphDot, ReprGraphSVG, ReprHTML,
	}
}

func (r Repr) String() string {
	if name, ok := reprNames[r]; ok {
		return name
	}
	return fmt.Sprintf("repr(%d)", int(r))
}

// ParseRepr looks a representation up by its name.
func ParseRepr(name string) (Repr, error) {
	for r, n := range reprNames {
		if n == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown representation %q", name)
}
