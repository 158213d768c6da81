package util_test

import (
	"testing"

	"lintang/astarx/pkg/util"

	"github.com/stretchr/testify/assert"
)

func TestUtil(t *testing.T) {
	t.Run("round float", func(t *testing.T) {
		assert.Equal(t, 3.14, util.RoundFloat(3.14159, 2))
		assert.Equal(t, 2.0, util.RoundFloat(1.999, 1))
	})

	t.Run("reverse", func(t *testing.T) {
		arr := []string{"a", "b", "c", "d"}
		util.ReverseG(arr)
		assert.Equal(t, []string{"d", "c", "b", "a"}, arr)

		empty := []int{}
		util.ReverseG(empty)
		assert.Empty(t, empty)
	})
}
