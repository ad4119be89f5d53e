package history

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SaveStatus reports what a Save attempt did.
type SaveStatus int

const (
	// SaveOK means the ring was written to disk.
	SaveOK SaveStatus = iota
	// SaveSkipped means the target was not writable and the save was
	// silently dropped, per the best-effort persistence policy.
	SaveSkipped
)

// SaveResult is the non-propagating outcome of a Save. Err carries the
// underlying cause when Status is SaveSkipped so tests and diagnostics can
// see what was swallowed.
type SaveResult struct {
	Status SaveStatus
	Err    error
}

// LoadStatus reports what a Load attempt found.
type LoadStatus int

const (
	// LoadOK means entries were restored from the file.
	LoadOK LoadStatus = iota
	// LoadMissing means no history file exists yet.
	LoadMissing
	// LoadCorrupt means the file exists but could not be read or
	// decoded; the ring is left empty.
	LoadCorrupt
)

// LoadResult is the non-propagating outcome of a Load.
type LoadResult struct {
	Status  LoadStatus
	Entries int
	Err     error
}

// Save serializes the ring to path as a JSON array of strings, enforcing
// the size bound first. The file is written to a temporary name and then
// renamed into place. An unwritable target yields SaveSkipped, never an
// error to the caller.
func (r *Ring) Save(path string) SaveResult {
	r.EnforceBound()

	doc := "[]"
	for _, entry := range r.entries {
		doc, _ = sjson.Set(doc, "-1", entry)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SaveResult{Status: SaveSkipped, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return SaveResult{Status: SaveSkipped, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return SaveResult{Status: SaveSkipped, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return SaveResult{Status: SaveSkipped, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return SaveResult{Status: SaveSkipped, Err: err}
	}
	return SaveResult{Status: SaveOK}
}

// Load replaces the ring's contents with the entries stored at path. A
// missing file or any decode failure leaves the ring empty; neither is an
// error, matching the best-effort restore policy.
func (r *Ring) Load(path string) LoadResult {
	r.Clear()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return LoadResult{Status: LoadMissing}
		}
		return LoadResult{Status: LoadCorrupt, Err: err}
	}

	if !gjson.ValidBytes(data) {
		return LoadResult{Status: LoadCorrupt, Err: errors.New("history file is not valid JSON")}
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return LoadResult{Status: LoadCorrupt, Err: errors.New("history file is not a JSON array")}
	}

	for _, item := range parsed.Array() {
		if item.Type == gjson.String {
			r.entries = append(r.entries, item.String())
		}
	}
	r.EnforceBound()
	return LoadResult{Status: LoadOK, Entries: len(r.entries)}
}

// Cleanup clears the ring in memory and immediately persists the empty
// state.
func (r *Ring) Cleanup(path string) SaveResult {
	r.Clear()
	return r.Save(path)
}
