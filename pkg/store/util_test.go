package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckDepth(t *testing.T) {
	for _, d := range []int{1, 2, 3} {
		assert.NoError(t, CheckDepth(d))
	}
	for _, d := range []int{-1, 0, 4, 100} {
		assert.Error(t, CheckDepth(d))
	}
}

func TestDedupeStrings(t *testing.T) {
	assert.Nil(t, DedupeStrings(nil))
	assert.Equal(t, []string{"c1", "c2"}, DedupeStrings([]string{"c1", "", "c2", "c1"}))
}
