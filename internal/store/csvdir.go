package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadspider-cli/internal/model"
)

// listSeparator joins multi-valued cells inside a flat-file column.
const listSeparator = ","

// CSVDirStore keeps one append-only CSV file per observation kind in a
// directory. This is the interchange layout the report builder and any
// external tooling read; a header row is written on file creation and
// rows are appended during the run.
type CSVDirStore struct {
	dir string
	mu  sync.Mutex
}

// NewCSVDir creates the directory if needed and returns a store over it.
func NewCSVDir(dir string) (*CSVDirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "csvdir: create %s", dir)
	}
	return &CSVDirStore{dir: dir}, nil
}

// Dir returns the table directory.
func (s *CSVDirStore) Dir() string {
	return s.dir
}

func (s *CSVDirStore) Close() error {
	return nil
}

func (s *CSVDirStore) AppendGeneral(_ context.Context, info model.GeneralInfo) error {
	tech := ""
	if len(info.Technologies) > 0 {
		b, err := json.Marshal(info.Technologies)
		if err != nil {
			return eris.Wrap(err, "csvdir: marshal technologies")
		}
		tech = string(b)
	}
	return s.appendRow(model.KindGeneralInfo, []string{
		string(info.Company),
		info.Language,
		strings.Join(info.B2BKeywords, listSeparator),
		strings.Join(info.Payments, listSeparator),
		strings.Join(info.WebshopURLs, listSeparator),
		strings.Join(info.WebshopSystems, listSeparator),
		tech,
		strings.Join(info.SocialLinks, listSeparator),
	})
}

func (s *CSVDirStore) AppendPrice(_ context.Context, sample model.PriceSample) error {
	avg := ""
	if sample.AvgPrice != nil {
		avg = strconv.FormatFloat(*sample.AvgPrice, 'f', -1, 64)
	}
	return s.appendRow(model.KindPrice, []string{
		string(sample.Company),
		avg,
		strconv.Itoa(sample.Quantity),
		sample.Currency,
	})
}

func (s *CSVDirStore) AppendContact(_ context.Context, contact model.ContactInfo) error {
	return s.appendRow(model.KindContact, []string{
		string(contact.Company),
		contact.SourcePage,
		strings.Join(contact.Phones, listSeparator),
		strings.Join(contact.Emails, listSeparator),
	})
}

func (s *CSVDirStore) ListGeneral(_ context.Context) ([]model.GeneralInfo, error) {
	rows, err := s.readRows(model.KindGeneralInfo)
	if err != nil {
		return nil, err
	}
	infos := make([]model.GeneralInfo, 0, len(rows))
	for _, r := range rows {
		info := model.GeneralInfo{
			Company:        model.CompanyID(r[0]),
			Language:       r[1],
			B2BKeywords:    splitCell(r[2]),
			Payments:       splitCell(r[3]),
			WebshopURLs:    splitCell(r[4]),
			WebshopSystems: splitCell(r[5]),
			SocialLinks:    splitCell(r[7]),
		}
		if r[6] != "" {
			if err := json.Unmarshal([]byte(r[6]), &info.Technologies); err != nil {
				return nil, eris.Wrapf(err, "csvdir: parse technologies for %s", r[0])
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *CSVDirStore) ListPrice(_ context.Context) ([]model.PriceSample, error) {
	rows, err := s.readRows(model.KindPrice)
	if err != nil {
		return nil, err
	}
	samples := make([]model.PriceSample, 0, len(rows))
	for _, r := range rows {
		sample := model.PriceSample{
			Company:  model.CompanyID(r[0]),
			Currency: r[3],
		}
		if r[1] != "" {
			avg, err := strconv.ParseFloat(r[1], 64)
			if err != nil {
				return nil, eris.Wrapf(err, "csvdir: parse avg price %q", r[1])
			}
			sample.AvgPrice = &avg
		}
		qty, err := strconv.Atoi(r[2])
		if err != nil {
			return nil, eris.Wrapf(err, "csvdir: parse quantity %q", r[2])
		}
		sample.Quantity = qty
		samples = append(samples, sample)
	}
	return samples, nil
}

func (s *CSVDirStore) ListContact(_ context.Context) ([]model.ContactInfo, error) {
	rows, err := s.readRows(model.KindContact)
	if err != nil {
		return nil, err
	}
	contacts := make([]model.ContactInfo, 0, len(rows))
	for _, r := range rows {
		contacts = append(contacts, model.ContactInfo{
			Company:    model.CompanyID(r[0]),
			SourcePage: r[1],
			Phones:     splitCell(r[2]),
			Emails:     splitCell(r[3]),
		})
	}
	return contacts, nil
}

// appendRow opens the kind's table file in append mode, writing the
// header first when the file is new.
func (s *CSVDirStore) appendRow(kind model.Kind, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, kind.TableFile())
	info, statErr := os.Stat(path)
	fresh := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "csvdir: open %s", path)
	}

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(kind.Columns()); err != nil {
			f.Close() //nolint:errcheck
			return eris.Wrapf(err, "csvdir: write header %s", path)
		}
	}
	if err := w.Write(row); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrapf(err, "csvdir: append %s", path)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrapf(err, "csvdir: flush %s", path)
	}
	return eris.Wrapf(f.Close(), "csvdir: close %s", path)
}

// readRows loads all data rows of a kind's table. A missing or empty
// file reports ErrNotFound so the caller can decide the severity.
func (s *CSVDirStore) readRows(kind model.Kind) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, kind.TableFile())
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrNotFound, "csvdir: table %s", kind)
		}
		return nil, eris.Wrapf(err, "csvdir: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(kind.Columns())

	var rows [][]string
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csvdir: read %s", path)
		}
		if first {
			first = false
			continue // header
		}
		rows = append(rows, record)
	}
	if first {
		// File existed but had no header: treat like a missing table.
		return nil, eris.Wrapf(ErrNotFound, "csvdir: table %s", kind)
	}
	return rows, nil
}

func splitCell(cell string) []string {
	if cell == "" {
		return nil
	}
	return strings.Split(cell, listSeparator)
}
