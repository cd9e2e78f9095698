package facility

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Lookup returns the facility rows sharing a code.
func (s *Service) Lookup(ctx context.Context, code string) ([]*Facility, error) {
	return s.repo.ListByCode(ctx, code)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Facility, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// csvHeader is the fixed column order of the facility register export.
var csvHeader = []string{"facility_code", "facility_name", "province", "district", "subdistrict", "phase"}

// ImportCSV reads the facility register CSV and inserts rows not already
// present. Returns the number of rows created.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	for i, want := range csvHeader {
		if i >= len(header) || strings.TrimSpace(header[i]) != want {
			return 0, fmt.Errorf("csv column %d must be %q", i+1, want)
		}
	}

	created := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return created, fmt.Errorf("read csv record: %w", err)
		}
		f := &Facility{
			FacilityCode: record[0],
			FacilityName: record[1],
			Province:     record[2],
			District:     record[3],
			Subdistrict:  record[4],
			Phase:        record[5],
		}
		n, err := s.importOne(ctx, f)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

// ImportJSON reads a JSON list of facility objects and inserts rows not
// already present. Returns the number of rows created.
func (s *Service) ImportJSON(ctx context.Context, r io.Reader) (int, error) {
	var records []struct {
		FacilityCode string `json:"facility_code"`
		FacilityName string `json:"facility_name"`
		Province     string `json:"province"`
		District     string `json:"district"`
		Subdistrict  string `json:"subdistrict"`
		Phase        string `json:"phase"`
	}
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("decode facility json: %w", err)
	}

	created := 0
	for _, rec := range records {
		f := &Facility{
			FacilityCode: rec.FacilityCode,
			FacilityName: rec.FacilityName,
			Province:     rec.Province,
			District:     rec.District,
			Subdistrict:  rec.Subdistrict,
			Phase:        rec.Phase,
		}
		n, err := s.importOne(ctx, f)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

func (s *Service) importOne(ctx context.Context, f *Facility) (int, error) {
	if f.FacilityCode == "" {
		return 0, fmt.Errorf("facility_code is required")
	}
	exists, err := s.repo.ExistsExact(ctx, f)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, nil
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return 0, err
	}
	return 1, nil
}
