package respira

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	Rp "github.com/maroda/respira/plugin"
	Rs "github.com/maroda/respira/server"
	Rt "github.com/maroda/respira/types"
)

// SetupMux handles all data serving:
// - Prometheus metric endpoint
// - Websocket feed of the latest analyses
// - Version for programmatic use
// - Analyses: latest, on demand, and stored per record
func (v *View) SetupMux() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", v.Stats.Handler())
	r.HandleFunc("/ws", v.WebsocketHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(v.StatsMiddleware)
	api.HandleFunc("/version", v.VersionHandler).Methods(http.MethodGet)
	api.HandleFunc("/analyses", v.AnalysesHandler).Methods(http.MethodGet)
	api.HandleFunc("/analyze", v.AnalyzeHandler).Methods(http.MethodGet)
	api.HandleFunc("/records/{record}", v.RecordHandler).Methods(http.MethodGet)

	return r
}

var Version = "dev"

func (v *View) VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": Version})
}

// AnalysesHandler returns the latest analysis of every configured job
func (v *View) AnalysesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, v.Snapshot())
}

// AnalyzeHandler serves /api/analyze?record=a01&offset=0&seconds=60
func (v *View) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	seg := Rt.Segment{Record: q.Get("record")}

	var err error
	if seg.Offset, err = queryInt(q.Get("offset"), 0); err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}
	if seg.Seconds, err = queryInt(q.Get("seconds"), 60); err != nil {
		writeError(w, http.StatusBadRequest, "seconds must be an integer")
		return
	}

	a, err := v.AnalyzeOne(r.Context(), seg)
	switch {
	case errors.Is(err, Rs.ErrInvalidSegment):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, a)
	}
}

// RecordHandler returns everything the output has stored for one record
func (v *View) RecordHandler(w http.ResponseWriter, r *http.Request) {
	record := mux.Vars(r)["record"]
	if v.Output == nil {
		writeError(w, http.StatusNotFound, "no output configured")
		return
	}

	analyses, err := v.Output.QueryRecord(record)
	switch {
	case errors.Is(err, Rp.ErrNoQuery):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		if analyses == nil {
			analyses = []*Rt.Analysis{}
		}
		writeJSON(w, http.StatusOK, analyses)
	}
}

func queryInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Could not encode response", slog.Any("Error", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
