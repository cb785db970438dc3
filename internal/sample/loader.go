// Package sample acquires example documents for inference: it reads batch
// files, selects samples out of each document with a jq expression and
// compacts oversized values.
package sample

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/usestring/schemainfer/pkg/jsoncompact"
	"github.com/usestring/schemainfer/pkg/value"
)

// Format identifies how a batch document is encoded.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl" // one JSON document per line
	FormatYAML  Format = "yaml"
)

// manifestFile is written next to batch files by collectors and never holds samples.
const manifestFile = "manifest.json"

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".jsonl", ".ndjson":
		return FormatJSONL, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Options configures a Loader.
type Options struct {
	// Selector is a jq expression run against each document; every output
	// becomes one sample. Empty or "." means the document itself, where a
	// top-level array is treated as a list of samples.
	Selector string
	// Compact trims samples before inference. Nil disables compaction.
	Compact *jsoncompact.Options
	// MaxSamples caps samples per entity (0 = no limit).
	MaxSamples int
}

// Loader turns batch documents into samples.
type Loader struct {
	code       *gojq.Code // nil for the identity selector
	compact    *jsoncompact.Options
	maxSamples int
}

// NewLoader compiles the selector.
func NewLoader(opts Options) (*Loader, error) {
	l := &Loader{compact: opts.Compact, maxSamples: opts.MaxSamples}
	sel := strings.TrimSpace(opts.Selector)
	if sel == "" || sel == "." {
		return l, nil
	}
	code, err := CompileSelector(sel)
	if err != nil {
		return nil, err
	}
	l.code = code
	return l, nil
}

// WithoutCompaction returns a copy of l that keeps samples as decoded.
func (l *Loader) WithoutCompaction() *Loader {
	out := *l
	out.compact = nil
	return &out
}

// CompileSelector parses and compiles a jq expression.
func CompileSelector(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

// Parse decodes data and returns its samples.
func (l *Loader) Parse(ctx context.Context, data []byte, format Format) ([]value.Value, error) {
	docs, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, doc := range docs {
		samples, err := l.selectSamples(ctx, doc)
		if err != nil {
			return nil, err
		}
		for _, s := range samples {
			if l.maxSamples > 0 && len(out) >= l.maxSamples {
				return out, nil
			}
			out = append(out, l.compactSample(s))
		}
	}
	return out, nil
}

// LoadFile reads one batch file. The entity name is the file name without
// its extension.
func (l *Loader) LoadFile(ctx context.Context, path string) (string, []value.Value, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return "", nil, fmt.Errorf("unsupported sample file %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", path, err)
	}
	samples, err := l.Parse(ctx, data, format)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)), samples, nil
}

// LoadDir reads every supported batch file directly under dir, in name order.
// Files that yield no samples are left out.
func (l *Loader) LoadDir(ctx context.Context, dir string) (map[string][]value.Value, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading sample directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || e.Name() == manifestFile || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, ok := FormatForPath(e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	batches := make(map[string][]value.Value, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entity, samples, err := l.LoadFile(ctx, filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if len(samples) == 0 {
			continue
		}
		// x.json and x.yaml feed the same entity
		batches[entity] = append(batches[entity], samples...)
		if l.maxSamples > 0 && len(batches[entity]) > l.maxSamples {
			batches[entity] = batches[entity][:l.maxSamples]
		}
	}
	return batches, nil
}

func (l *Loader) selectSamples(ctx context.Context, doc value.Value) ([]value.Value, error) {
	if l.code == nil {
		if doc.IsSeq() {
			return doc.Items(), nil
		}
		return []value.Value{doc}, nil
	}

	var out []value.Value
	iter := l.code.RunWithContext(ctx, doc.Interface())
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("selector: %w", err)
		}
		out = append(out, value.FromAny(v))
	}
	return out, nil
}

func (l *Loader) compactSample(v value.Value) value.Value {
	if l.compact == nil {
		return v
	}
	return jsoncompact.CompactValue(v, l.compact)
}

func decode(data []byte, format Format) ([]value.Value, error) {
	switch format {
	case FormatJSON, "":
		v, err := value.ParseJSON(data)
		if err != nil {
			return nil, err
		}
		return []value.Value{v}, nil
	case FormatYAML:
		v, err := value.ParseYAML(data)
		if err != nil {
			return nil, err
		}
		return []value.Value{v}, nil
	case FormatJSONL:
		var docs []value.Value
		sc := bufio.NewScanner(bytes.NewReader(data))
		sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
		line := 0
		for sc.Scan() {
			line++
			text := bytes.TrimSpace(sc.Bytes())
			if len(text) == 0 {
				continue
			}
			v, err := value.ParseJSON(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			docs = append(docs, v)
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return docs, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
