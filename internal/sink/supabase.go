package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/mapleads-cli/internal/model"
)

// SupabaseSink inserts records through the Supabase PostgREST API.
type SupabaseSink struct {
	baseURL string
	apiKey  string
	table   string
	http    *http.Client
}

// SupabaseOption configures the sink.
type SupabaseOption func(*SupabaseSink)

// WithSupabaseHTTPClient overrides the default http.Client.
func WithSupabaseHTTPClient(hc *http.Client) SupabaseOption {
	return func(s *SupabaseSink) {
		s.http = hc
	}
}

// NewSupabase creates a sink writing to the given table of a Supabase
// project. baseURL is the project URL, key the service or anon API key.
func NewSupabase(baseURL, key, table string, opts ...SupabaseOption) *SupabaseSink {
	s := &SupabaseSink{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  key,
		table:   table,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// supabaseRow is the PostgREST insert payload; column names follow the
// original table layout.
type supabaseRow struct {
	Name    string  `json:"Name"`
	Address string  `json:"Address"`
	Phone   string  `json:"Phone"`
	Website string  `json:"Website"`
	Email   *string `json:"Email"`
	Rating  float64 `json:"Rating"`
	Reviews int     `json:"Reviews"`
	Types   string  `json:"Types"`
}

// Insert implements RecordSink.
func (s *SupabaseSink) Insert(ctx context.Context, record model.PlaceRecord) error {
	row := supabaseRow{
		Name:    record.Name,
		Address: record.Address,
		Phone:   record.Phone,
		Website: record.Website,
		Rating:  record.Rating,
		Reviews: record.Reviews,
		Types:   strings.Join(record.Types, ", "),
	}
	if record.Email != "" {
		row.Email = &record.Email
	}

	body, err := json.Marshal(row)
	if err != nil {
		return eris.Wrap(err, "supabase: marshal row")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/rest/v1/"+s.table, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "supabase: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "supabase: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return eris.Errorf("supabase: insert status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
