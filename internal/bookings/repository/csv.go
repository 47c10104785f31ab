package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"busly/pkg/model"
)

// csvRecordStore keeps the whole table in one flat CSV file with the fixed
// 9-column schema. Appends take the store mutex and land as a single write
// on an O_APPEND handle, so concurrent appends from this process cannot
// interleave rows. Cross-process writers are not supported.
type csvRecordStore struct {
	path string
	mu   sync.Mutex
}

func NewCSVRecordStore(path string) (RecordStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store := &csvRecordStore{path: path}
	if err := store.initialize(); err != nil {
		return nil, err
	}
	return store, nil
}

// initialize creates the file with the header row on first use.
func (s *csvRecordStore) initialize() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat record file: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(model.CSVHeader); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to create record file: %w", err)
	}
	return nil
}

func (s *csvRecordStore) Append(ctx context.Context, records []*model.BookingRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, record := range records {
		if err := w.Write(record.CSVRow()); err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open record file: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("failed to append records: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync record file: %w", err)
	}
	return f.Close()
}

func (s *csvRecordStore) Scan(ctx context.Context) ([]*model.BookingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(model.CSVHeader)

	// Header row.
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var records []*model.BookingRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record row: %w", err)
		}

		record, err := model.RecordFromCSVRow(row)
		if err != nil {
			return nil, fmt.Errorf("corrupt record row: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}

func (s *csvRecordStore) FindByBus(ctx context.Context, bus string) ([]*model.BookingRecord, error) {
	records, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*model.BookingRecord
	for _, record := range records {
		if record.Bus == bus {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

func (s *csvRecordStore) Count(ctx context.Context) (int64, error) {
	records, err := s.Scan(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}
