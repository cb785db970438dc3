package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldStats(t *testing.T) {
	samples := mustJSONs(t,
		`{"Name":"a","Age":1,"Owner":{"Mail":"x"},"Rows":[{"Id":1},{"Id":2}]}`,
		`{"Name":"b","Age":null,"Owner":null,"Rows":[{"Id":1}]}`,
		`{"Name":"a","Rows":[]}`,
	)
	res := NewEngine(nil).Infer(samples)
	stats := FieldStats(res.Schema, samples)

	byPath := map[string]FieldStat{}
	var paths []string
	for _, s := range stats {
		byPath[s.Path] = s
		paths = append(paths, s.Path)
	}
	assert.Equal(t, []string{"Name", "Age", "Owner", "Owner.Mail", "Rows", "Rows[].Id"}, paths)

	name := byPath["Name"]
	assert.True(t, name.Present)
	assert.Equal(t, 2, name.DistinctCount)
	assert.Equal(t, []any{"a", "b"}, name.Examples)

	age := byPath["Age"]
	assert.InDelta(t, 2.0/3.0, age.Frequency, 1e-9)
	assert.True(t, age.Nullable)
	assert.Equal(t, "integer|null", age.Type)

	mail := byPath["Owner.Mail"]
	assert.Equal(t, 1.0, mail.Frequency, "only the non-null owner is a parent instance")

	id := byPath["Rows[].Id"]
	require.NotEmpty(t, id.Examples)
	assert.Equal(t, 2, id.DistinctCount)
}

func TestFieldStats_Empty(t *testing.T) {
	assert.Nil(t, FieldStats(nil, nil))
}
