package storage

import (
	"testing"

	"github.com/poiesic/retrievit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []SnapshotRecord {
	return []SnapshotRecord{
		{
			Doc: core.Document{
				ID:      "doc-lm",
				Content: "lm() is used to fit linear models.",
				Meta: core.DocumentMeta{
					Title:    "Linear Models",
					Type:     "man_page",
					Package:  "stats",
					Function: "lm",
					Task:     "statistical_modeling",
					Extra:    map[string]string{"concept": "regression", "source": "base"},
				},
			},
			Vector: []float32{0.1, -0.25, 0.9},
		},
		{
			Doc: core.Document{
				ID:      "doc-plot",
				Content: "plot() is the generic plotting function.",
				Meta:    core.DocumentMeta{Type: "man_page", Package: "graphics", Function: "plot"},
			},
			Vector: []float32{0.7, 0.2, -0.4},
		},
		{
			// No metadata, no vector.
			Doc: core.Document{ID: "doc-bare", Content: "bare document"},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	records := sampleRecords()

	data := MarshalSnapshot(records)
	require.NotEmpty(t, data)

	restored, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	require.Len(t, restored, len(records))

	for i := range records {
		assert.Equal(t, records[i].Doc, restored[i].Doc, "record %d", i)
		assert.Equal(t, records[i].Vector, restored[i].Vector, "record %d", i)
	}
}

func TestSnapshotRoundTrip_Empty(t *testing.T) {
	data := MarshalSnapshot(nil)
	restored, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Empty(t, restored)
}

func TestMarshalSnapshot_Deterministic(t *testing.T) {
	records := sampleRecords()
	first := MarshalSnapshot(records)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, MarshalSnapshot(records))
	}
}

func TestUnmarshalSnapshot_Corrupt(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := UnmarshalSnapshot(nil)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := UnmarshalSnapshot([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
		assert.Error(t, err)
	})

	t.Run("truncated valid data", func(t *testing.T) {
		data := MarshalSnapshot(sampleRecords())
		_, err := UnmarshalSnapshot(data[:len(data)/2])
		assert.Error(t, err)
	})

	t.Run("wrong version", func(t *testing.T) {
		data := MarshalSnapshot(sampleRecords())
		data[0] = 0x7f // clobber the version varint
		_, err := UnmarshalSnapshot(data)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}
