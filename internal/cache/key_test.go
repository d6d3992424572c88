package cache

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	a := Key("tracks", []string{"b", "a", "c"})
	b := Key("tracks", []string{"c", "b", "a"})

	assert.Equal(t, a, b, "order of ids must not change the key")
	assert.Regexp(t, regexp.MustCompile(`^tracks-[0-9a-f]{16}$`), a)
	assert.NotEqual(t, a, Key("artists", []string{"a", "b", "c"}))
	assert.NotEqual(t, a, Key("tracks", []string{"a", "b"}))
	// separators keep concatenations apart
	assert.NotEqual(t, Key("tracks", []string{"ab", "c"}), Key("tracks", []string{"a", "bc"}))
}

func TestKey_DoesNotReorderInput(t *testing.T) {
	ids := []string{"z", "y", "x"}
	Key("tracks", ids)
	assert.Equal(t, []string{"z", "y", "x"}, ids)
}
