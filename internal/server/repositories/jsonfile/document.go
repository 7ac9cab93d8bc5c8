package jsonfile

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/dmitrijs2005/projdash/internal/filex"
	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed schema/*.schema.json
var schemas embed.FS

// ErrMalformedState is returned when a stored document cannot be decoded or
// does not match its schema.
var ErrMalformedState = errors.New("malformed state")

const filePerm = 0o600

// stageFile is a seam for filex.StageFile.
var stageFile = filex.StageFile

var compiled sync.Map // schema name -> *gojsonschema.Schema

func schemaFor(name string) (*gojsonschema.Schema, error) {
	if s, ok := compiled.Load(name); ok {
		return s.(*gojsonschema.Schema), nil
	}

	raw, err := schemas.ReadFile("schema/" + name + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}

	compiled.Store(name, s)
	return s, nil
}

// document is one JSON array file, loaded on first access and written back
// only when modified.
type document[T any] struct {
	name   string
	items  []T
	loaded bool
	dirty  bool
}

func (d *document[T]) path(dir string) string {
	return filepath.Join(dir, d.name+".json")
}

func (d *document[T]) load(dir string) ([]T, error) {
	if d.loaded {
		return d.items, nil
	}

	data, err := os.ReadFile(d.path(dir))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", d.name, err)
	}

	items := make([]T, 0)
	if len(bytes.TrimSpace(data)) > 0 {
		if err := validate(d.name, data); err != nil {
			return nil, err
		}
		if err := sonic.ConfigStd.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedState, d.name, err)
		}
	}

	d.items, d.loaded = items, true
	return d.items, nil
}

func (d *document[T]) set(items []T) {
	d.items, d.loaded, d.dirty = items, true, true
}

// stage encodes a modified document into a temporary file next to its
// target and returns the file name, or "" when there is nothing to write.
func (d *document[T]) stage(dir string) (string, error) {
	if !d.dirty {
		return "", nil
	}

	data, err := sonic.ConfigStd.MarshalIndent(d.items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", d.name, err)
	}
	tmp, err := stageFile(d.path(dir), data, filePerm)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", d.name, err)
	}
	return tmp, nil
}

func (d *document[T]) committed() { d.dirty = false }

func validate(name string, data []byte) error {
	schema, err := schemaFor(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedState, name, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s: %s", ErrMalformedState, name, strings.Join(msgs, "; "))
	}
	return nil
}
