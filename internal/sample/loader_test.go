package sample

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/schemainfer/pkg/jsoncompact"
	"github.com/usestring/schemainfer/pkg/value"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoader_ParseIdentity(t *testing.T) {
	l, err := NewLoader(Options{})
	require.NoError(t, err)

	samples, err := l.Parse(context.Background(), []byte(`[{"b":1,"a":2},{"b":3}]`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	// document key order survives the identity selector
	assert.Equal(t, []string{"b", "a"}, samples[0].Keys())

	single, err := l.Parse(context.Background(), []byte(`{"x":true}`), FormatJSON)
	require.NoError(t, err)
	assert.Len(t, single, 1)
}

func TestLoader_ParseSelector(t *testing.T) {
	l, err := NewLoader(Options{Selector: `.samples[].response`})
	require.NoError(t, err)

	doc := `{"method":"GetCustomer","samples":[
		{"request":{},"response":{"Id":"a"}},
		{"request":{},"response":{"Id":"b","Name":"x"}}
	]}`
	samples, err := l.Parse(context.Background(), []byte(doc), FormatJSON)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	name, ok := samples[1].Get("Name")
	require.True(t, ok)
	assert.Equal(t, "x", name.AsString())
}

func TestLoader_SelectorErrors(t *testing.T) {
	_, err := NewLoader(Options{Selector: `.samples[`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jq expression")

	l, err := NewLoader(Options{Selector: `.samples[]`})
	require.NoError(t, err)
	_, err = l.Parse(context.Background(), []byte(`{"samples":5}`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selector")
}

func TestLoader_ParseFormats(t *testing.T) {
	l, err := NewLoader(Options{})
	require.NoError(t, err)

	yamlSamples, err := l.Parse(context.Background(), []byte("- Id: a\n  Count: 2\n- Id: b\n"), FormatYAML)
	require.NoError(t, err)
	require.Len(t, yamlSamples, 2)
	count, _ := yamlSamples[0].Get("Count")
	assert.Equal(t, value.KindInt, count.Kind())

	lines, err := l.Parse(context.Background(), []byte("{\"a\":1}\n\n{\"a\":2}\n"), FormatJSONL)
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	_, err = l.Parse(context.Background(), []byte("{\"a\":1}\n{oops\n"), FormatJSONL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoader_CompactAndCap(t *testing.T) {
	l, err := NewLoader(Options{
		Compact:    &jsoncompact.Options{MaxArrayItems: 2},
		MaxSamples: 1,
	})
	require.NoError(t, err)

	samples, err := l.Parse(context.Background(), []byte(`[{"tags":[1,2,3,4]},{"tags":[]}]`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, samples, 1)

	tags, _ := samples[0].Get("tags")
	require.Len(t, tags.Items(), 3)
	assert.True(t, tags.Items()[2].IsTruncated())
}

func TestLoader_LoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "GetCustomer.json", `[{"Id":"a"},{"Id":"b"}]`)
	writeFile(t, dir, "GetOrders.yaml", "- Total: 1.5\n")
	writeFile(t, dir, "GetOrders.jsonl", "{\"Total\":2}\n")
	writeFile(t, dir, "Empty.json", `[]`)
	writeFile(t, dir, "manifest.json", `{"run":"x"}`)
	writeFile(t, dir, "README.md", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	l, err := NewLoader(Options{})
	require.NoError(t, err)
	batches, err := l.LoadDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, batches, 2)
	assert.Len(t, batches["GetCustomer"], 2)
	// jsonl sorts before yaml
	require.Len(t, batches["GetOrders"], 2)
	first, _ := batches["GetOrders"][0].Get("Total")
	assert.Equal(t, value.KindInt, first.Kind())
}

func TestLoader_LoadDirErrors(t *testing.T) {
	l, err := NewLoader(Options{})
	require.NoError(t, err)

	_, err = l.LoadDir(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	dir := t.TempDir()
	writeFile(t, dir, "Bad.json", `{`)
	_, err = l.LoadDir(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad.json")
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.json", FormatJSON, true},
		{"a.JSON", FormatJSON, true},
		{"a.ndjson", FormatJSONL, true},
		{"a.yml", FormatYAML, true},
		{"a.txt", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatForPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoader_WithoutCompaction(t *testing.T) {
	l, err := NewLoader(Options{Compact: &jsoncompact.Options{MaxArrayItems: 1}})
	require.NoError(t, err)

	raw := l.WithoutCompaction()
	samples, err := raw.Parse(context.Background(), []byte(`{"tags":[1,2,3]}`), FormatJSON)
	require.NoError(t, err)
	tags, _ := samples[0].Get("tags")
	assert.Len(t, tags.Items(), 3)

	// the original loader still compacts
	samples, err = l.Parse(context.Background(), []byte(`{"tags":[1,2,3]}`), FormatJSON)
	require.NoError(t, err)
	tags, _ = samples[0].Get("tags")
	assert.Len(t, tags.Items(), 2)
}
