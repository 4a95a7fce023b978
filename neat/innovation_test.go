package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInnovationsRegisterAndLookup(t *testing.T) {
	inn := NewInnovations(2, 1)
	assert.Equal(t, 4, inn.NumNodes())
	assert.Equal(t, 0, inn.NumConnections())

	_, ok := inn.Lookup(0, 3)
	assert.False(t, ok)

	first := inn.register(0, 3)
	second := inn.register(2, 3)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	id, ok := inn.Lookup(2, 3)
	require.True(t, ok)
	assert.Equal(t, second, id)

	link, ok := inn.Connection(first)
	require.True(t, ok)
	assert.Equal(t, Link{In: 0, Out: 3}, link)

	_, ok = inn.Connection(5)
	assert.False(t, ok)
	_, ok = inn.Lookup(99, 3)
	assert.False(t, ok)
}

func TestInnovationsSplitIsRecordedOnce(t *testing.T) {
	inn := NewInnovations(2, 1)
	id := inn.register(1, 3)

	s := inn.split(id)
	assert.Equal(t, Split{Node: 4, InConn: 1, OutConn: 2}, s)
	assert.Equal(t, s, inn.split(id))
	assert.Equal(t, 5, inn.NumNodes())
	assert.Equal(t, 3, inn.NumConnections())

	recorded, ok := inn.LookupSplit(id)
	require.True(t, ok)
	assert.Equal(t, s, recorded)
	_, ok = inn.LookupSplit(s.InConn)
	assert.False(t, ok)

	link, _ := inn.Connection(s.InConn)
	assert.Equal(t, Link{In: 1, Out: 4}, link)
	link, _ = inn.Connection(s.OutConn)
	assert.Equal(t, Link{In: 4, Out: 3}, link)
}

func TestInnovationsReachable(t *testing.T) {
	inn := NewInnovations(1, 1)
	id := inn.register(0, 2)
	s := inn.split(id) // 0 -> 3 -> 2
	other := inn.split(s.OutConn)

	seen := inn.reachable(s.Node)
	assert.True(t, seen[s.Node], "start is included")
	assert.True(t, seen[other.Node])
	assert.True(t, seen[2])
	assert.False(t, seen[0])
	assert.False(t, seen[1])

	seen = inn.reachable(0)
	for node := range seen {
		if node == 1 {
			assert.False(t, seen[node], "bias has no path from the sensor")
		} else {
			assert.True(t, seen[node], "node %d", node)
		}
	}
}
