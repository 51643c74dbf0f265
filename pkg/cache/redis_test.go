package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "calendar:plan:abc", Key("plan", "abc"))
	assert.Equal(t, "calendar:plan:*", Key("plan", "*"))
}
