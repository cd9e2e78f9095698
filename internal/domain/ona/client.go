// Package ona pulls case reports from the Ona forms API.
package ona

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// FormInfo is a form as listed by the Ona API.
type FormInfo struct {
	FormID   int64  `json:"formid"`
	IDString string `json:"id_string"`
	Title    string `json:"title"`
	UUID     string `json:"uuid"`
}

// Record is one submitted form record. Optional fields default to blank.
type Record struct {
	ID                  int64  `json:"_id"`
	UUID                string `json:"_uuid"`
	SubmissionTime      string `json:"_submission_time"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Locality            string `json:"locality"`
	DateOfBirth         string `json:"date_of_birth"`
	SAIDNumber          string `json:"sa_id_number"`
	MSISDN              string `json:"msisdn"`
	IDType              string `json:"id_type"`
	Abroad              string `json:"abroad"`
	ReportedBy          string `json:"reported_by"`
	Gender              string `json:"gender"`
	FacilityCode        string `json:"facility_code"`
	Landmark            string `json:"landmark"`
	LandmarkDescription string `json:"landmark_description"`
}

// API is the slice of the Ona API the sync needs.
type API interface {
	Forms(ctx context.Context) ([]FormInfo, error)
	FormData(ctx context.Context, formID int64) ([]Record, error)
}

// Client talks to the Ona REST API with token auth.
type Client struct {
	client *resty.Client
}

func NewClient(baseURL, accessToken string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", "Token "+accessToken)
	return &Client{client: c}
}

func (c *Client) Forms(ctx context.Context) ([]FormInfo, error) {
	var forms []FormInfo
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&forms).
		Get("/api/v1/forms.json")
	if err != nil {
		return nil, fmt.Errorf("ona forms: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ona forms: unexpected status %d", resp.StatusCode())
	}
	return forms, nil
}

func (c *Client) FormData(ctx context.Context, formID int64) ([]Record, error) {
	var records []Record
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&records).
		Get(fmt.Sprintf("/api/v1/data/%d.json", formID))
	if err != nil {
		return nil, fmt.Errorf("ona form %d data: %w", formID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ona form %d data: unexpected status %d", formID, resp.StatusCode())
	}
	return records, nil
}
