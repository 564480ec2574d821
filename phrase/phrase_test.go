package phrase_test

import (
	"testing"

	"github.com/seo-optimizer/contentgate/phrase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_EmptyPhraseMatchesNothing(t *testing.T) {
	p := phrase.Compile("   ")
	assert.Nil(t, p)
	assert.Equal(t, 0, p.Count("anything at all"))
	assert.Equal(t, "", p.String())
}

func TestCount_CaseInsensitiveWholeWord(t *testing.T) {
	p := phrase.Compile("pesca")
	assert.Equal(t, 3, p.Count("Pesca, pesca y PESCA. Pescador no cuenta, apesca tampoco."))
}

func TestCount_AccentedBoundaries(t *testing.T) {
	p := phrase.Compile("canción")
	assert.Equal(t, 1, p.Count("una canción bonita"))
	assert.Equal(t, 0, p.Count("canciónes"))
	assert.Equal(t, 1, p.Count("la CANCIÓN"))
}

func TestCount_AdjacentOccurrences(t *testing.T) {
	p := phrase.Compile("pesca")
	assert.Equal(t, 4, p.Count("pesca pesca pesca pesca"))
}

func TestCount_WhitespaceTolerantPhrase(t *testing.T) {
	p := phrase.Compile("pesca  deportiva")
	assert.Equal(t, "pesca deportiva", p.String())
	assert.Equal(t, 2, p.Count("La pesca\n deportiva y la pesca\tdeportiva."))
}

func TestCount_Metacharacters(t *testing.T) {
	cases := []struct {
		phrase string
		text   string
		want   int
	}{
		{"(sic)", "dijo (sic) y (sic)", 2},
		{"c++", "aprende c++ hoy", 1},
		{"a.b", "a.b y axb", 1},
		{"¿sabías que?", "¿Sabías que? Sí.", 1},
		{"[beta]", "version [beta]", 1},
	}
	for _, tc := range cases {
		t.Run(tc.phrase, func(t *testing.T) {
			p := phrase.Compile(tc.phrase)
			require.NotNil(t, p)
			assert.Equal(t, tc.want, p.Count(tc.text))
		})
	}
}

func TestFindAll_OffsetsInDocumentOrder(t *testing.T) {
	p := phrase.Compile("sol")
	text := "sol, girasol, sol"
	locs := p.FindAll(text)
	require.Len(t, locs, 2)
	assert.Equal(t, []int{0, 3}, locs[0])
	assert.Equal(t, "sol", text[locs[1][0]:locs[1][1]])
	assert.Equal(t, len(text)-3, locs[1][0])
}

func TestFindAll_RejectedMatchDoesNotHideOverlap(t *testing.T) {
	p := phrase.Compile("aa")
	assert.Equal(t, 1, p.Count("aaa aa"))
}

func TestIn(t *testing.T) {
	p := phrase.Compile("guía")
	assert.True(t, p.In("Esta guía completa"))
	assert.False(t, p.In("guías"))
}

func TestCompile_InvalidUTF8(t *testing.T) {
	var p *phrase.Pattern
	require.NotPanics(t, func() { p = phrase.Compile("pesca\xff") })
	require.NotNil(t, p)
	assert.Equal(t, "pesca�", p.String())
	assert.Equal(t, 1, p.Count("la pesca� del día"))
	assert.Equal(t, 0, p.Count("la pesca del día"))
}
