package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/cistern-configurator/internal/adapter/report"
	"github.com/couchcryptid/cistern-configurator/internal/calculator"
	"github.com/couchcryptid/cistern-configurator/internal/domain"
)

// maxBodyBytes bounds a calculation request body.
const maxBodyBytes = 64 << 10

type calculationResponse struct {
	domain.CalculationResult
	Display report.Lines      `json:"display"`
	Links   map[string]string `json:"links"`
	Summary string            `json:"summary"`
	Mailto  string            `json:"mailto"`
}

type rainfallResponse struct {
	PostalCode     string  `json:"postal_code"`
	AnnualRainfall float64 `json:"annual_rainfall_mm"`
	UsedDefault    bool    `json:"used_default_rainfall"`
}

type reloadResponse struct {
	Version         string `json:"version"`
	RainfallRecords int    `json:"rainfall_records"`
	Products        int    `json:"products"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(r.Body)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be a JSON site form"})
		return
	}

	result, err := s.calc.Calculate(r.Context(), form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, calculationResponse{
		CalculationResult: result,
		Display:           report.Format(result),
		Links:             report.Links(result.Product),
		Summary:           report.Summary(result),
		Mailto:            report.MailtoURL(result),
	})
}

func (s *Server) handleRainfall(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "postalCode")
	mm, matched, err := s.calc.Rainfall(code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, rainfallResponse{
		PostalCode:     code,
		AnnualRainfall: mm,
		UsedDefault:    !matched,
	})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.calc.Products()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, products)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ref, err := s.calc.Reload(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, reloadResponse{
		Version:         ref.Version,
		RainfallRecords: len(ref.Rainfall.Records),
		Products:        len(ref.Catalog),
	})
}

// writeError maps application errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error: verr.Message,
			Kind:  string(verr.Kind),
			Field: verr.Field,
		})
	case errors.Is(err, calculator.ErrNotReady):
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		sharedobs.WriteJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
}

// decodeForm reads exactly one JSON object; trailing data is rejected.
func decodeForm(body io.Reader) (domain.SiteForm, error) {
	var form domain.SiteForm
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	if err := dec.Decode(&form); err != nil {
		return domain.SiteForm{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.SiteForm{}, errors.New("unexpected data after site form")
	}
	return form, nil
}

// writeJSON encodes v before writing the status so an unencodable value
// becomes a 500 instead of an empty success.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "encode response failed", "path", r.URL.Path, "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "response could not be encoded"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
