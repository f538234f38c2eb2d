package idgen_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/equip-api/internal/pkg/idgen"
)

func TestUUIDGenerator(t *testing.T) {
	id := idgen.NewUUID("evt").Generate()
	require.True(t, strings.HasPrefix(id, "evt_"))

	_, err := uuid.Parse(strings.TrimPrefix(id, "evt_"))
	assert.NoError(t, err)

	bare := idgen.NewUUID("").Generate()
	_, err = uuid.Parse(bare)
	assert.NoError(t, err)
	assert.NotEqual(t, bare, idgen.NewUUID("").Generate())
}

func TestSequentialGenerator(t *testing.T) {
	gen := idgen.NewSequential("evt")
	assert.Equal(t, "evt_1", gen.Generate())
	assert.Equal(t, "evt_2", gen.Generate())

	assert.Equal(t, "1", idgen.NewSequential("").Generate())
}
