// Package compdb loads the compile database exported by ninja.
package compdb

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/flarebyte/shoggoth/internal/fault"
	"github.com/flarebyte/shoggoth/internal/logging"
	"github.com/flarebyte/shoggoth/internal/proc"
)

var log = logging.Log

// Record is one compile database entry. Link steps carry an output but no file.
type Record struct {
	Directory string `json:"directory,omitempty"`
	Command   string `json:"command"`
	File      string `json:"file,omitempty"`
	Output    string `json:"output"`
}

// Loader exports the compile database of a ninja build directory.
type Loader struct {
	Runner proc.Runner
	// Ninja is the program name or path; defaults to "ninja".
	Ninja string
}

// Load runs `ninja -C buildRoot -t compdb` and decodes its output.
func (l Loader) Load(ctx context.Context, buildRoot string) ([]Record, error) {
	ninja := l.Ninja
	if ninja == "" {
		ninja = "ninja"
	}
	res, err := l.Runner.Run(ctx, ninja, "-C", buildRoot, "-t", "compdb")
	if err != nil {
		return nil, err
	}
	records, err := Decode(res.Stdout)
	if err != nil {
		return nil, &fault.DataParseError{Source: ninja + " -t compdb", Err: err}
	}
	log.Info("loaded %d compile records from %s", len(records), buildRoot)
	return records, nil
}

// Decode parses a JSON array of records.
func Decode(b []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FindByOutput returns the first record whose output base name is name.
func FindByOutput(records []Record, name string) (Record, error) {
	for _, r := range records {
		if filepath.Base(r.Output) == name {
			return r, nil
		}
	}
	return Record{}, &fault.NotFoundError{What: "compile record output", Name: name}
}

// FindByFile returns the first record compiling the given source file. The
// match is on the file as written in the database or on its base name.
func FindByFile(records []Record, file string) (Record, error) {
	for _, r := range records {
		if r.File == "" {
			continue
		}
		if r.File == file || filepath.Base(r.File) == file {
			return r, nil
		}
	}
	return Record{}, &fault.NotFoundError{What: "compile record file", Name: file}
}
