package textclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	in := "  상속\n인은 사망으로 개시된다.\r\n\r\n\r\n제1조   본문,\n이어짐\t끝  "
	want := "상속인은 사망으로 개시된다.\n\n제1조 본문, 이어짐 끝"

	assert.Equal(t, want, Normalize(in))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"  상속\n인은 사망으로 개시된다.\r\n\r\n\r\n제1조   본문,\n이어짐\t끝  ",
		"Line one\nline two\n\n\n\nNext paragraph.",
		"\r\r\rabc\r\ndef",
		"제1\n\n2조 (상속)",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_PostConditions(t *testing.T) {
	in := "\x01head\r\n\r\n\r\n\r\nbody\f\u0007text \t  tail\n\n\n\n"

	out := Normalize(in)

	assert.NotContains(t, out, "\r")
	assert.NotContains(t, out, "\n\n\n")
	assert.NotContains(t, out, "  ")
	assert.NotContains(t, out, "\t")
	assert.Equal(t, strings.TrimSpace(out), out)
	for _, r := range out {
		assert.False(t, isPrivateUse(r), "private use rune %U survived", r)
		assert.False(t, r < 0x20 && r != '\n', "control rune %U survived", r)
	}
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("\x00 \n\t"))
}

func TestNormalize_LoneCarriageReturn(t *testing.T) {
	assert.Equal(t, "abc def", Normalize("abc\rdef"))
}

func TestNormalize_CRLFIsOneLineEnd(t *testing.T) {
	assert.Equal(t, "끝. 다음.\n\n문단.", Normalize("끝.\r\n다음.\r\n\r\n문단."))
}
