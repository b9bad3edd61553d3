package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ignite/marketing-console/internal/auth"
	"github.com/ignite/marketing-console/internal/metrics"
)

// handleImport serves POST /api/import. Row-level validation failures are
// data, not errors: the response is 200 with a partial-import summary even
// when some rows were skipped.
func (h *Handlers) handleImport(maxBodyBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		var input struct {
			Workflow string `json:"workflow"`
			CSVData  string `json:"csvData"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			if err == io.EOF {
				respondError(w, http.StatusBadRequest, "request body is required")
				return
			}
			respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		summary, err := h.importer.Import(r.Context(), auth.FromContext(r.Context()), input.Workflow, input.CSVData)
		if err != nil {
			h.writeError(w, err)
			return
		}

		metrics.RecordImportRows(input.Workflow, summary.Imported, len(summary.Errors))
		respondData(w, http.StatusOK, summary)
	}
}

// handleExport serves GET /api/export?workflow= as a CSV download.
func (h *Handlers) handleExport(w http.ResponseWriter, r *http.Request) {
	workflow := r.URL.Query().Get("workflow")

	text, err := h.importer.Export(r.Context(), auth.FromContext(r.Context()), workflow)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", workflow))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}
