package ona

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientForms(t *testing.T) {
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"formid": 1, "id_string": "malaria_case", "title": "Malaria Case", "uuid": "form-uuid-1"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "the-token")
	forms, err := client.Forms(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Token the-token" {
		t.Errorf("unexpected auth header %q", auth)
	}
	if path != "/api/v1/forms.json" {
		t.Errorf("unexpected path %q", path)
	}
	if len(forms) != 1 || forms[0].FormID != 1 || forms[0].IDString != "malaria_case" {
		t.Errorf("unexpected forms %+v", forms)
	}
}

func TestClientFormData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/data/7.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"_id": 1234, "_uuid": "rec-1", "first_name": "John", "facility_code": "0001"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "the-token")
	records, err := client.FormData(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].UUID != "rec-1" || records[0].FirstName != "John" {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestClientForms_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-token")
	if _, err := client.Forms(context.Background()); err == nil {
		t.Error("expected error for non-2xx response")
	}
}
