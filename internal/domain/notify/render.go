package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/malariaconnect/api/internal/domain/cases"
	"github.com/malariaconnect/api/internal/domain/facility"
	"github.com/malariaconnect/api/internal/platform/pdf"
)

var caseEmailTmpl = template.Must(template.New("case_email").Parse(`<html>
<body>
<h2>Malaria case number {{.CaseNumber}}</h2>
<table>
<tr><td>First name</td><td>{{.FirstName}}</td></tr>
<tr><td>Last name</td><td>{{.LastName}}</td></tr>
<tr><td>Locality</td><td>{{.Locality}}</td></tr>
<tr><td>Date of birth</td><td>{{.DateOfBirth}}</td></tr>
<tr><td>Age</td><td>{{.Age}}</td></tr>
<tr><td>Gender</td><td>{{.Gender}}</td></tr>
<tr><td>SA ID number</td><td>{{.SAIDNumber}}</td></tr>
<tr><td>Phone number</td><td>{{.MSISDN}}</td></tr>
<tr><td>Travel history</td><td>{{.Abroad}}</td></tr>
<tr><td>Facility code</td><td>{{.FacilityCode}}</td></tr>
<tr><td>Facility</td><td>{{.FacilityNames}}</td></tr>
<tr><td>Province</td><td>{{.Provinces}}</td></tr>
<tr><td>District</td><td>{{.Districts}}</td></tr>
<tr><td>Subdistrict</td><td>{{.Subdistricts}}</td></tr>
<tr><td>Landmark</td><td>{{.Landmark}}</td></tr>
<tr><td>Landmark description</td><td>{{.LandmarkDescription}}</td></tr>
<tr><td>Reported by</td><td>{{.ReportedBy}}</td></tr>
<tr><td>Reported at</td><td>{{.CreateDateTime}}</td></tr>
</table>
</body>
</html>
`))

// buildReport maps a case and its facility rows onto the fields shared by
// the PDF and the HTML email. Age is computed here; a malformed date of
// birth is a hard error.
func buildReport(c *cases.ReportedCase, facilities []*facility.Facility) (*pdf.CaseReport, error) {
	age, err := c.Age()
	if err != nil {
		return nil, err
	}
	return &pdf.CaseReport{
		CaseNumber:          c.CaseNumber,
		FirstName:           c.FirstName,
		LastName:            c.LastName,
		Locality:            c.Locality,
		DateOfBirth:         c.DateOfBirth,
		Age:                 age,
		Gender:              c.Gender,
		SAIDNumber:          c.SAIDNumber,
		MSISDN:              c.MSISDN,
		Abroad:              c.Abroad,
		FacilityCode:        c.FacilityCode,
		FacilityNames:       facility.Names(facilities),
		Provinces:           facility.Provinces(facilities),
		Districts:           facility.Districts(facilities),
		Subdistricts:        facility.Subdistricts(facilities),
		Landmark:            c.Landmark,
		LandmarkDescription: c.LandmarkDescription,
		ReportedBy:          c.ReportedBy,
		CreateDateTime:      c.CreateDateTime.Format("2006-01-02 15:04"),
	}, nil
}

func renderCaseEmailHTML(report *pdf.CaseReport) (string, error) {
	var buf bytes.Buffer
	if err := caseEmailTmpl.Execute(&buf, report); err != nil {
		return "", fmt.Errorf("render case email: %w", err)
	}
	return buf.String(), nil
}

func renderCaseEmailText(report *pdf.CaseReport) string {
	return fmt.Sprintf(
		"Malaria case number %s\n\n%s %s, %s, age %d\nFacility: %s (%s)\nLocality: %s\nReported at %s\n",
		report.CaseNumber, report.FirstName, report.LastName, report.Gender, report.Age,
		report.FacilityNames, report.FacilityCode, report.Locality, report.CreateDateTime)
}

// investigatorSMS is the abbreviated alert for case investigators: case
// number, facility, identity, demographics and location, no attachment.
func investigatorSMS(c *cases.ReportedCase, facilities []*facility.Facility) (string, error) {
	age, err := c.Age()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"New malaria case %s at %s. Patient: %s %s, %s, age %d. Locality: %s. Landmark: %s.",
		c.CaseNumber, facility.Names(facilities),
		c.FirstName, c.LastName, c.Gender, age, c.Locality, c.Landmark), nil
}
