package registry

import (
	"encoding/json"
	"testing"

	"github.com/Prakashmoharana1985/O-RAN/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeDirectoryKeysByExactID(t *testing.T) {
	testlog.Start(t)

	d := NewTypeDirectory()
	assert.True(t, d.Put(CapabilityType{ID: "t1", Schema: json.RawMessage(`{}`)}))

	_, ok := d.Get(" t1 ")
	assert.False(t, ok)
	assert.False(t, d.Contains(" t1 "))
	_, ok = d.Remove(" t1 ")
	assert.False(t, ok)

	got, err := d.GetType("t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	_, err = d.GetType(" t1 ")
	require.ErrorIs(t, err, ErrNotFound)
}
