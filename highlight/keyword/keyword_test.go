package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchBlockedLiteral(t *testing.T) {
	assert := assert.New(t)

	text := PostText("Spoiler Warning", "nothing to see here")
	assert.Equal([]string{"spoiler"}, MatchBlocked([]string{"spoiler"}, text))
	assert.Equal([]string{"spoiler"}, MatchBlocked([]string{"  SPOILER "}, text))
	assert.Empty(MatchBlocked([]string{"leak"}, text))

	// literal entries are not interpreted as regex
	assert.Empty(MatchBlocked([]string{"spo.ler"}, text))
	assert.Equal([]string{"spo.ler"}, MatchBlocked([]string{"spo.ler"}, PostText("spo.ler", "")))
}

func TestMatchBlockedRegex(t *testing.T) {
	assert := assert.New(t)

	kw := []string{"/^mega.*thread$/"}
	assert.Equal([]string{"/^mega.*thread$/"}, MatchBlocked(kw, PostText("Megathread", "")))
	assert.Empty(MatchBlocked(kw, PostText("not a megathread here", "")))
	assert.Equal([]string{"/^mega.*thread$/"}, MatchBlocked(kw, PostText("", "Megathread")))

	// body participates in matching
	assert.Equal([]string{"/giveaway/"}, MatchBlocked([]string{"/giveaway/"}, PostText("title", "big GIVEAWAY inside")))
}

func TestMatchBlockedInvalidRegexSkipped(t *testing.T) {
	assert := assert.New(t)

	text := PostText("Spoiler Warning", "")
	matches := MatchBlocked([]string{"/[unclosed/", "spoiler"}, text)
	assert.Equal([]string{"spoiler"}, matches)
}

func TestMatchBlockedOrderAndEmpties(t *testing.T) {
	assert := assert.New(t)

	text := PostText("alpha beta gamma", "")
	matches := MatchBlocked([]string{"gamma", "", "alpha", "delta"}, text)
	assert.Equal([]string{"gamma", "alpha"}, matches)
	assert.Empty(MatchBlocked(nil, text))
}
