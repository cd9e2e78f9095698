// Package pdf renders the case report document attached to alert emails.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// CaseReport holds the fields printed on a reported-case PDF.
type CaseReport struct {
	CaseNumber          string
	FirstName           string
	LastName            string
	Locality            string
	DateOfBirth         string
	Age                 int
	Gender              string
	SAIDNumber          string
	MSISDN              string
	Abroad              string
	FacilityCode        string
	FacilityNames       string
	Provinces           string
	Districts           string
	Subdistricts        string
	Landmark            string
	LandmarkDescription string
	ReportedBy          string
	CreateDateTime      string
}

// Render produces the PDF document for a reported case.
func Render(r *CaseReport) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Malaria case %s", r.CaseNumber), false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, fmt.Sprintf("Malaria case number %s", r.CaseNumber))
	doc.Ln(14)

	rows := []struct {
		label, value string
	}{
		{"First name", r.FirstName},
		{"Last name", r.LastName},
		{"Locality", r.Locality},
		{"Date of birth", r.DateOfBirth},
		{"Age", fmt.Sprintf("%d", r.Age)},
		{"Gender", r.Gender},
		{"SA ID number", r.SAIDNumber},
		{"Phone number", r.MSISDN},
		{"Travel history", r.Abroad},
		{"Facility code", r.FacilityCode},
		{"Facility", r.FacilityNames},
		{"Province", r.Provinces},
		{"District", r.Districts},
		{"Subdistrict", r.Subdistricts},
		{"Landmark", r.Landmark},
		{"Landmark description", r.LandmarkDescription},
		{"Reported by", r.ReportedBy},
		{"Reported at", r.CreateDateTime},
	}

	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(55, 7, row.label, "1", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 7, row.value, "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render case pdf: %w", err)
	}
	return buf.Bytes(), nil
}
