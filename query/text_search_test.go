package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFullTextQuerySingleWord(t *testing.T) {
	assert.Equal(t, `"order*"`, formatFullTextQuery("order"))
}

func TestFormatFullTextQueryMultiWord(t *testing.T) {
	assert.Equal(t, `"order*" AND "failed*"`, formatFullTextQuery("order failed"))
}

func TestFormatFullTextQueryStripsInjectionCharacters(t *testing.T) {
	assert.Equal(t, `"dropusers*"`, formatFullTextQuery(`drop"[{(users)}]*?\!`))
}

func TestFormatFullTextQueryEmptyAfterStripYieldsEmptyString(t *testing.T) {
	assert.Equal(t, "", formatFullTextQuery(`"*?\!`))
}

func TestFormatFullTextQueryCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, `"a*" AND "b*"`, formatFullTextQuery("  a   b  "))
}
