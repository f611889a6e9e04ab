package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"
)

// rowPos locates a row: file index in the sorted file list and row index within that file.
type rowPos struct {
	File int
	Row  int
}

// readPlacesCallback is invoked for each row. Returning false stops the read.
type readPlacesCallback func(row *fsqPlaceRow, pos rowPos) bool

// parquetReader streams places parquet files with skip support for resume.
type parquetReader struct {
	files  []string
	logger *zap.Logger
}

// newParquetReader scans dataDir for parquet files.
func newParquetReader(dataDir string, logger *zap.Logger) (*parquetReader, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.parquet"))
	if err != nil {
		return nil, fmt.Errorf("glob parquet files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no parquet files found in %s", dataDir)
	}
	sort.Strings(files)
	logger.Info("Found parquet files", zap.Int("count", len(files)), zap.String("dir", dataDir))
	return &parquetReader{files: files, logger: logger}, nil
}

// ReadPlaces reads rows starting at fileIndex/rowOffset. maxRows=0 means no limit.
func (r *parquetReader) ReadPlaces(fileIndex, rowOffset, maxRows int, cb readPlacesCallback) error {
	remaining := maxRows

	for fi := fileIndex; fi < len(r.files); fi++ {
		skip := 0
		if fi == fileIndex {
			skip = rowOffset
		}

		n, stopped, err := r.readFile(fi, skip, remaining, cb)
		if err != nil {
			return fmt.Errorf("read %s: %w", filepath.Base(r.files[fi]), err)
		}
		if stopped {
			return nil
		}
		if maxRows > 0 {
			remaining -= n
			if remaining <= 0 {
				return nil
			}
		}
	}
	return nil
}

// placeColumns holds leaf column indexes of the fields we read.
type placeColumns struct {
	fsqPlaceID   int
	name         int
	latitude     int
	longitude    int
	locality     int
	region       int
	country      int
	fsqCatLabels int
	dateClosed   int
}

func resolvePlaceColumns(schema *parquet.Schema) placeColumns {
	cols := placeColumns{
		fsqPlaceID: -1, name: -1, latitude: -1, longitude: -1,
		locality: -1, region: -1, country: -1,
		fsqCatLabels: -1, dateClosed: -1,
	}
	for i, path := range schema.Columns() {
		if len(path) == 0 {
			continue
		}
		switch path[0] {
		case "fsq_place_id":
			cols.fsqPlaceID = i
		case "name":
			cols.name = i
		case "latitude":
			cols.latitude = i
		case "longitude":
			cols.longitude = i
		case "locality":
			cols.locality = i
		case "region":
			cols.region = i
		case "country":
			cols.country = i
		case "fsq_category_labels":
			cols.fsqCatLabels = i
		case "date_closed":
			cols.dateClosed = i
		}
	}
	return cols
}

// readFile reads one file, skipping the first skip rows.
// It returns the number of rows delivered and whether the callback stopped the read.
func (r *parquetReader) readFile(fi, skip, maxRows int, cb readPlacesCallback) (int, bool, error) {
	h, err := openParquet(r.files[fi])
	if err != nil {
		return 0, false, err
	}
	defer h.Close()

	cols := resolvePlaceColumns(h.pf.Schema())
	pos := rowPos{File: fi}
	read := 0
	buf := make([]parquet.Row, 1000)

	for _, rg := range h.pf.RowGroups() {
		rgRows := int(rg.NumRows())
		if pos.Row+rgRows <= skip {
			pos.Row += rgRows
			continue
		}

		rows := parquet.NewRowGroupReader(rg)
		for {
			cnt, readErr := rows.ReadRows(buf)
			for i := 0; i < cnt; i++ {
				if pos.Row < skip {
					pos.Row++
					continue
				}
				place := rowToPlace(buf[i], cols)
				if !cb(&place, pos) {
					return read, true, nil
				}
				pos.Row++
				read++
				if maxRows > 0 && read >= maxRows {
					return read, false, nil
				}
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return read, false, fmt.Errorf("read rows: %w", readErr)
			}
		}
	}
	return read, false, nil
}

// rowToPlace extracts a row by leaf column index.
func rowToPlace(row parquet.Row, cols placeColumns) fsqPlaceRow {
	var p fsqPlaceRow
	for _, v := range row {
		if v.IsNull() {
			continue
		}
		switch v.Column() {
		case cols.fsqPlaceID:
			p.FSQPlaceID = v.String()
		case cols.name:
			p.Name = v.String()
		case cols.latitude:
			f := v.Double()
			p.Latitude = &f
		case cols.longitude:
			f := v.Double()
			p.Longitude = &f
		case cols.locality:
			p.Locality = ptr(v.String())
		case cols.region:
			p.Region = ptr(v.String())
		case cols.country:
			p.Country = ptr(v.String())
		case cols.fsqCatLabels:
			p.FSQCategoryLabel = append(p.FSQCategoryLabel, v.String())
		case cols.dateClosed:
			p.DateClosed = ptr(v.String())
		}
	}
	return p
}

func ptr(s string) *string { return &s }

// parquetHandle wraps parquet.File and the underlying os.File.
type parquetHandle struct {
	pf   *parquet.File
	file *os.File
}

func (h *parquetHandle) Close() {
	_ = h.file.Close()
}

func openParquet(path string) (*parquetHandle, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	return &parquetHandle{pf: pf, file: f}, nil
}
