package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"deal-finder-service/internal/core/domain"
	usecases_port "deal-finder-service/internal/core/port/usecases_port"
)

const defaultMaxResults = 10

// ScrapeHandler serves POST /scrape/{source}.
type ScrapeHandler struct {
	ingestUC usecases_port.IngestListingsUseCase
}

func NewScrapeHandler(ingestUC usecases_port.IngestListingsUseCase) *ScrapeHandler {
	return &ScrapeHandler{ingestUC: ingestUC}
}

func (h *ScrapeHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	source := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "source")))

	// Parameters arrive as query params; an optional JSON body may supply
	// or override the same fields.
	params := r.URL.Query()
	body := ScrapeBody{
		City:  params.Get("city"),
		Query: params.Get("query"),
	}
	if raw := params.Get("max_results"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			WriteJSONError(w, http.StatusBadRequest, "max_results must be a positive integer")
			return
		}
		body.MaxResults = value
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if body.MaxResults == 0 {
		body.MaxResults = defaultMaxResults
	}

	req := domain.ScrapeRequest{
		Source:     source,
		City:       strings.TrimSpace(body.City),
		Query:      strings.TrimSpace(body.Query),
		MaxResults: body.MaxResults,
	}

	summary, err := h.ingestUC.Execute(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, ScrapeSummaryResponse{
		Source:     summary.Source,
		City:       summary.City,
		Query:      summary.Query,
		Inserted:   summary.Inserted,
		Skipped:    summary.Skipped,
		Duplicates: summary.Duplicates,
		Deals:      toDealResponses(summary.Deals),
	})
}

// DealsHandler serves GET /deals and GET /deals/{dealID}.
type DealsHandler struct {
	getDealsUC    usecases_port.GetDealsUseCase
	getDealByIDUC usecases_port.GetDealByIDUseCase
}

func NewDealsHandler(getDealsUC usecases_port.GetDealsUseCase,
	getDealByIDUC usecases_port.GetDealByIDUseCase) *DealsHandler {
	return &DealsHandler{
		getDealsUC:    getDealsUC,
		getDealByIDUC: getDealByIDUC,
	}
}

func (h *DealsHandler) GetDeals(w http.ResponseWriter, r *http.Request) {
	filter, err := dealFilterFromQuery(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	deals, err := h.getDealsUC.Execute(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// The client consumes a bare array; zero results is [], never null.
	RespondWithJSON(w, http.StatusOK, toDealResponses(deals))
}

func (h *DealsHandler) GetDealByID(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealID")

	deal, err := h.getDealByIDUC.Execute(r.Context(), dealID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, toDealResponse(deal))
}

// NewHealthHandler serves GET /health.
func NewHealthHandler(serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": serviceName,
		})
	}
}

// dealFilterFromQuery parses GET /deals query parameters. A missing
// threshold means 0, a non-numeric one is a client error.
func dealFilterFromQuery(r *http.Request) (domain.DealFilter, error) {
	q := r.URL.Query()
	filter := domain.DealFilter{
		Make:     strings.TrimSpace(q.Get("make")),
		Model:    strings.TrimSpace(q.Get("model")),
		Location: strings.TrimSpace(q.Get("location")),
	}

	if raw := q.Get("min_undervalue_percent"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.DealFilter{}, errors.New("min_undervalue_percent must be a number")
		}
		filter.MinUndervaluePercent = value
	}

	if raw := q.Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return domain.DealFilter{}, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = value
	}

	if raw := q.Get("include_low_confidence"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.DealFilter{}, errors.New("include_low_confidence must be a boolean")
		}
		filter.IncludeLowConfidence = value
	}

	return filter, nil
}

// writeDomainError maps domain sentinel errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnknownSource):
		WriteJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrSourceUnavailable):
		WriteJSONError(w, http.StatusBadGateway, err.Error())
	default:
		WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
