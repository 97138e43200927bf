package core

import "strings"

// BDDKeyword classifies a line of a BDD description.
type BDDKeyword string

const (
	BDDGiven BDDKeyword = "given"
	BDDWhen  BDDKeyword = "when"
	BDDThen  BDDKeyword = "then"
	BDDAnd   BDDKeyword = "and" // And and But share a class
	BDDPlain BDDKeyword = ""
)

// BDDStep is one non-blank line of a description.
type BDDStep struct {
	Keyword BDDKeyword `json:"keyword"`
	Text    string     `json:"text"`
}

var bddPrefixes = []struct {
	prefix  string
	keyword BDDKeyword
}{
	{"given", BDDGiven},
	{"when", BDDWhen},
	{"then", BDDThen},
	{"and", BDDAnd},
	{"but", BDDAnd},
}

// SplitBDD splits a description into trimmed, non-blank steps, tagging each
// with the keyword its line starts with (case-insensitive).
func SplitBDD(desc string) []BDDStep {
	var steps []BDDStep
	for _, line := range strings.Split(strings.ReplaceAll(desc, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		steps = append(steps, BDDStep{Keyword: bddKeyword(line), Text: line})
	}
	return steps
}

func bddKeyword(line string) BDDKeyword {
	lower := strings.ToLower(line)
	for _, p := range bddPrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.keyword
		}
	}
	return BDDPlain
}
