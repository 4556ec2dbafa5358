// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/matthewdeanmartin/hermetic/lib/codec"
)

// Record is one denied operation, as appended to the audit sink. The
// detail field is stored post-redaction; the raw value never touches
// disk.
type Record struct {
	Time   time.Time `cbor:"time"`
	Guard  string    `cbor:"guard"`
	Op     string    `cbor:"op"`
	Detail string    `cbor:"detail,omitempty"`
	Rule   string    `cbor:"rule"`
}

// Line renders the record in the denial line shape, prefixed with its
// timestamp. Used by the audit subcommand.
func (r Record) Line() string {
	return fmt.Sprintf("%s %s", r.Time.UTC().Format(time.RFC3339Nano), FormatLine(r.Op, r.Detail, r.Rule))
}

// CompressedSuffix selects zstd compression for an audit path.
const CompressedSuffix = ".zst"

// AuditWriter appends CBOR records to a file, optionally through
// zstd. Each writer session produces a self-contained frame, so
// appending to an existing compressed file yields concatenated frames
// that decoders handle transparently.
type AuditWriter struct {
	mu   sync.Mutex
	enc  *codec.Encoder
	zst  *zstd.Encoder
	file *os.File
}

// NewAuditWriter opens (or creates) the audit file at path for
// appending. A .zst suffix selects zstd compression.
func NewAuditWriter(path string) (*AuditWriter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening audit file: %w", err)
	}

	w := &AuditWriter{file: file}
	if strings.HasSuffix(path, CompressedSuffix) {
		zw, err := zstd.NewWriter(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("initializing audit compression: %w", err)
		}
		w.zst = zw
		w.enc = codec.NewEncoder(zw)
	} else {
		w.enc = codec.NewEncoder(file)
	}
	return w, nil
}

// Write appends one record.
func (w *AuditWriter) Write(record Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(record); err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}

// Close flushes the compression frame (if any) and closes the file.
func (w *AuditWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	if w.zst != nil {
		if err := w.zst.Close(); err != nil {
			errs = append(errs, fmt.Errorf("flushing audit compression: %w", err))
		}
		w.zst = nil
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing audit file: %w", err))
		}
		w.file = nil
	}
	return errors.Join(errs...)
}

// ReadAuditFile decodes every record in an audit file, transparently
// decompressing .zst files (including concatenated frames from
// multiple append sessions).
func ReadAuditFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening audit file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, CompressedSuffix) {
		zr, err := zstd.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("initializing audit decompression: %w", err)
		}
		defer zr.Close()
		reader = zr
	}

	var records []Record
	decoder := codec.NewDecoder(reader)
	for {
		var record Record
		if err := decoder.Decode(&record); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decoding audit record %d: %w", len(records), err)
		}
		records = append(records, record)
	}
	return records, nil
}
