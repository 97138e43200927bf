package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitBDD(t *testing.T) {
	desc := "Given a registered user\r\n\n  when they submit the form \nThen a session starts\nAnd a cookie is set\nBut no email is sent\nNotes: flaky on CI"

	steps := SplitBDD(desc)

	assert.Equal(t, []BDDStep{
		{Keyword: BDDGiven, Text: "Given a registered user"},
		{Keyword: BDDWhen, Text: "when they submit the form"},
		{Keyword: BDDThen, Text: "Then a session starts"},
		{Keyword: BDDAnd, Text: "And a cookie is set"},
		{Keyword: BDDAnd, Text: "But no email is sent"},
		{Keyword: BDDPlain, Text: "Notes: flaky on CI"},
	}, steps)
}

func TestSplitBDD_Empty(t *testing.T) {
	assert.Empty(t, SplitBDD(""))
	assert.Empty(t, SplitBDD(" \n\t\n"))
}
