package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupMissing(t *testing.T) {
	assert.Nil(t, GroupMissing(nil, 10))
	assert.Equal(t, []TimeRange{{Start: 0, End: 20}, {Start: 50, End: 50}, {Start: 70, End: 80}},
		GroupMissing([]int64{0, 10, 20, 50, 70, 80}, 10))
}
