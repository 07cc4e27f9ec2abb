package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPatternEscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"go":       `%go%`,
		"%":        `%\%%`,
		"snake_ca": `%snake\_ca%`,
		`C:\dev`:   `%C:\\dev%`,
		`100%_\`:   `%100\%\_\\%`,
	}
	for in, want := range cases {
		assert.Equal(t, want, containsPattern(in), in)
	}
}
