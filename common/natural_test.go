package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareNatural(t *testing.T) {
	assert.Negative(t, CompareNatural("frame2", "frame10"))
	assert.Positive(t, CompareNatural("frame10", "frame2"))
	assert.Zero(t, CompareNatural("frame7", "frame7"))
}

func TestSortNatural(t *testing.T) {
	keys := []string{"frame10.obj", "frame2.obj", "frame1.obj", "alpha"}
	SortNatural(keys)
	assert.Equal(t, []string{"alpha", "frame1.obj", "frame2.obj", "frame10.obj"}, keys)
}
