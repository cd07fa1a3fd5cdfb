package dialog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMetacharacters(t *testing.T) {
	for _, r := range metacharacters {
		in := "a" + string(r) + "b"
		want := "a\\" + string(r) + "b"
		assert.Equal(t, want, escapeMetacharacters(in), "char %q", r)
	}

	assert.Equal(t, "plain text, no change!", escapeMetacharacters("plain text, no change!"))
	assert.Equal(t, `disk \(C:\\\) is 90% full\.`, escapeMetacharacters(`disk (C:\) is 90% full.`))
}

func TestEscapeMetacharactersOncePerChar(t *testing.T) {
	in := "a.b*c"
	got := escapeMetacharacters(in)
	assert.Equal(t, 2, strings.Count(got, `\`))
	assert.Equal(t, `a\.b\*c`, got)
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "bbold/b", stripMarkup("<b>bold</b>"))
	assert.Equal(t, "a  b", stripMarkup("a <> b"))
	assert.Equal(t, "no markup", stripMarkup("no markup"))
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, `say 'hi'`, quoteLiteral(`say "hi"`))
	assert.Equal(t, `it's`, quoteLiteral(`it's`))
}

func TestQuoteAppleScriptTitle(t *testing.T) {
	assert.Equal(t, `C:\\Temp\\`, quoteAppleScriptTitle(`C:\Temp\`))
	assert.Equal(t, `a 'b' \\n`, quoteAppleScriptTitle(`a "b" \n`))
}
