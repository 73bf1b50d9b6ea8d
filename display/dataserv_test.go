package respira_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	Rd "github.com/maroda/respira/display"
	Rp "github.com/maroda/respira/plugin"
	Rs "github.com/maroda/respira/server"
	Rt "github.com/maroda/respira/types"
)

func TestView_SetupMux(t *testing.T) {
	view := makeTestView(t)
	mux := view.SetupMux()

	t.Run("Websocket Endpoint answers", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		// websocket upgrade will fail in test, but check for the 400
		assertStatus(t, w.Code, http.StatusBadRequest)
	})

	t.Run("Metrics Endpoint answers", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/metrics", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		assertStatus(t, w.Code, http.StatusOK)
	})

	t.Run("Version Endpoint answers with JSON", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/version", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		assertStatus(t, w.Code, http.StatusOK)

		// Does it return JSON?
		var resp map[string]string
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		assertError(t, err, nil)

		// Check for the version field
		if _, ok := resp["version"]; !ok {
			t.Errorf("Field 'version' not found in response")
		}
	})

	t.Run("API responses carry a request ID", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/version", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)

		if w.Header().Get("X-Request-Id") == "" {
			t.Errorf("expected an X-Request-Id header")
		}
	})

	t.Run("A given request ID is kept", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/version", nil)
		r.Header.Set("X-Request-Id", "breath-1")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)

		assertStringContains(t, w.Header().Get("X-Request-Id"), "breath-1")
	})

	t.Run("Only GET is routed", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/api/analyses", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		assertStatus(t, w.Code, http.StatusMethodNotAllowed)
	})
}

func TestView_VersionHandler(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/version", nil)
	w := httptest.NewRecorder()

	view := &Rd.View{}
	view.VersionHandler(w, r)

	// Check status code
	assertStatus(t, w.Code, http.StatusOK)

	// Check response, "dev" is the default
	want := "dev"
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assertStringContains(t, response["version"], want)
}

func TestView_AnalysesHandler(t *testing.T) {
	view := makeTestView(t)
	mux := view.SetupMux()

	t.Run("Returns an empty list before any analysis", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/analyses", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)

		assertStatus(t, w.Code, http.StatusOK)
		assertStringContains(t, w.Body.String(), "[]")
	})

	t.Run("Returns the latest analysis of each job", func(t *testing.T) {
		view.AnalyzeJobs(t.Context())

		r := httptest.NewRequest("GET", "/api/analyses", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		assertStatus(t, w.Code, http.StatusOK)

		var got []*Rt.Analysis
		assertError(t, json.Unmarshal(w.Body.Bytes(), &got), nil)
		assertInt(t, len(got), 2)
		assertStringContains(t, got[1].Segment.Record, "sim")
		if got[0].BreathFrequency <= 0 {
			t.Errorf("expected a breath estimate, got %v", got[0].BreathFrequency)
		}
	})
}

func TestView_AnalyzeHandler(t *testing.T) {
	view := makeTestView(t)
	mux := view.SetupMux()

	t.Run("Analyses a requested segment", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/analyze?record=sim&offset=30&seconds=30", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		assertStatus(t, w.Code, http.StatusOK)

		var got Rt.Analysis
		assertError(t, json.Unmarshal(w.Body.Bytes(), &got), nil)
		assertInt(t, got.Segment.Offset, 30)
		assertInt(t, got.Segment.Seconds, 30)
		if len(got.Beats) == 0 {
			t.Errorf("expected beats in a simulated segment")
		}
	})

	t.Run("Defaults to a minute from the start", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/analyze?record=sim", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		assertStatus(t, w.Code, http.StatusOK)

		var got Rt.Analysis
		assertError(t, json.Unmarshal(w.Body.Bytes(), &got), nil)
		assertInt(t, got.Segment.Seconds, 60)
	})

	t.Run("Rejects a missing record", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/analyze?seconds=60", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)

		assertStatus(t, w.Code, http.StatusBadRequest)
		assertStringContains(t, w.Body.String(), "error")
	})

	t.Run("Rejects a bad number", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/analyze?record=sim&offset=soon", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		assertStatus(t, w.Code, http.StatusBadRequest)
	})

	t.Run("Fails without an on-demand analyzer", func(t *testing.T) {
		bare := Rd.NewView(nil, nil, nil, 1)
		r := httptest.NewRequest("GET", "/api/analyze?record=sim", nil)
		w := httptest.NewRecorder()
		bare.SetupMux().ServeHTTP(w, r)
		assertStatus(t, w.Code, http.StatusInternalServerError)
	})
}

func TestView_RecordHandler(t *testing.T) {
	t.Run("Returns 404 without an output", func(t *testing.T) {
		view := Rd.NewView(nil, nil, nil, 1)
		r := httptest.NewRequest("GET", "/api/records/a01", nil)
		w := httptest.NewRecorder()
		view.SetupMux().ServeHTTP(w, r)
		assertStatus(t, w.Code, http.StatusNotFound)
	})

	t.Run("Returns 404 for an output that only publishes", func(t *testing.T) {
		view := Rd.NewView(nil, nil, &Rp.NATSOutput{}, 1)
		r := httptest.NewRequest("GET", "/api/records/a01", nil)
		w := httptest.NewRecorder()
		view.SetupMux().ServeHTTP(w, r)
		assertStatus(t, w.Code, http.StatusNotFound)
	})

	t.Run("Returns what the output stored for the record", func(t *testing.T) {
		out := &memoryOutput{}
		out.WriteAnalysis(&Rt.Analysis{Segment: Rt.Segment{Record: "a01", Seconds: 60}})
		out.WriteAnalysis(&Rt.Analysis{Segment: Rt.Segment{Record: "a01", Offset: 60, Seconds: 60}})
		out.WriteAnalysis(&Rt.Analysis{Segment: Rt.Segment{Record: "b01", Seconds: 60}})

		view := Rd.NewView(nil, nil, out, 1)
		r := httptest.NewRequest("GET", "/api/records/a01", nil)
		w := httptest.NewRecorder()
		view.SetupMux().ServeHTTP(w, r)
		assertStatus(t, w.Code, http.StatusOK)

		var got []*Rt.Analysis
		assertError(t, json.Unmarshal(w.Body.Bytes(), &got), nil)
		assertInt(t, len(got), 2)
	})

	t.Run("Returns an empty list for an unknown record", func(t *testing.T) {
		view := Rd.NewView(nil, nil, &memoryOutput{}, 1)
		r := httptest.NewRequest("GET", "/api/records/zz", nil)
		w := httptest.NewRecorder()
		view.SetupMux().ServeHTTP(w, r)

		assertStatus(t, w.Code, http.StatusOK)
		assertStringContains(t, w.Body.String(), "[]")
	})
}

// makeTestView has two simulated jobs and a simulated on-demand analyzer
func makeTestView(t *testing.T) *Rd.View {
	t.Helper()
	jobs, err := Rs.NewJobsFromConfig([]Rs.ConfigFile{{
		ID:     "SIM",
		Source: "sim:hr=72,br=0.25,depth=0.15",
		Segments: []Rt.Segment{
			{Record: "sim", Offset: 0, Seconds: 60},
			{Record: "sim", Offset: 60, Seconds: 60},
		},
	}})
	assertError(t, err, nil)

	an, err := Rs.NewAnalyzer(Rs.NewSimProvider(72, 0.25, 0.15, 0), "")
	assertError(t, err, nil)

	return Rd.NewView(jobs, an, nil, 2)
}
