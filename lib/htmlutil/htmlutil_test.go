package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(
		`<div>hello <span>nested <b>world</b></span></div>`,
	))
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, "hello nested world", GetText(doc))
}

func TestCleanText(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"  안녕   하세요\t\n", "안녕 하세요"},
		{"plain", "plain"},
		{"\n\tword\n", "word"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, CleanText(test.input))
	}
}
