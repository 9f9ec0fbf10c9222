package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%golang%", ContainsPattern("GoLang"))
	assert.Equal(t, `%100\%%`, ContainsPattern("100%"))
	assert.Equal(t, `%snake\_case%`, ContainsPattern("snake_case"))
	assert.Equal(t, `%a\\b%`, ContainsPattern(`a\b`))
}
