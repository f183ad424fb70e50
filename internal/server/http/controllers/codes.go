package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/doebialale/EZRAVERIFY/internal/record"
	"github.com/doebialale/EZRAVERIFY/internal/runtime"
	"github.com/doebialale/EZRAVERIFY/internal/store"
	logpkg "github.com/doebialale/EZRAVERIFY/pkg/log"
)

// CodesController handles the code management API: issuance, sale
// recording, and the admin listing.
type CodesController struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// NewCodesController creates a new codes controller.
func NewCodesController(rt *runtime.Runtime, logger logpkg.Logger) *CodesController {
	return &CodesController{rt: rt, logger: logger.WithComponent("codes")}
}

// RegisterRoutes registers code API routes with the given mux.
func (c *CodesController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/codes", c.handleCodes)
	mux.HandleFunc("/v1/codes/sale", c.handleSale)
}

// handleCodes dispatches POST (issue) and GET (list) on /v1/codes.
func (c *CodesController) handleCodes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		c.handleIssue(w, r)
	case http.MethodGet:
		c.handleList(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleIssue creates a new code. Returns 201 with the id, verification
// URL, and QR artifact path.
func (c *CodesController) handleIssue(w http.ResponseWriter, r *http.Request) {
	// An empty body issues a code dated today with generated info.
	var req issueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var mfg record.Date
	if req.ManufacturingDate != "" {
		parsed, err := record.ParseDate(req.ManufacturingDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid manufacturingDate; want YYYY-MM-DD")
			return
		}
		mfg = parsed
	}

	out, err := c.rt.Issuer().Issue(r.Context(), mfg, req.Info)
	if err != nil {
		c.logger.Error("issue failed", logpkg.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to issue code")
		return
	}
	if m := c.rt.Metrics(); m != nil {
		m.CodesIssued.Inc()
	}
	writeCreated(w, issueResp{
		ID:                out.Record.ID,
		URL:               out.URL,
		QRPath:            out.QRPath,
		ManufacturingDate: out.Record.ManufacturingDate.String(),
		ExpirationDate:    out.Record.ExpirationDate.String(),
		Info:              out.Record.Info,
	})
}

// handleSale records the one-time sale of a code. 404 when the code is
// unknown, 409 when a sale was already recorded.
func (c *CodesController) handleSale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req saleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Missing id")
		return
	}

	soldDate := record.DateOf(timeNow())
	if req.SoldDate != "" {
		parsed, err := record.ParseDate(req.SoldDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid soldDate; want YYYY-MM-DD")
			return
		}
		soldDate = parsed
	}

	err := c.rt.Store().RecordSale(r.Context(), req.ID, soldDate)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Unknown code")
	case errors.Is(err, store.ErrAlreadySold):
		writeError(w, http.StatusConflict, "Sale already recorded")
	case err != nil:
		c.logger.Error("record sale failed", logpkg.Str("id", req.ID), logpkg.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to record sale")
	default:
		if m := c.rt.Metrics(); m != nil {
			m.SalesRecorded.Inc()
		}
		writeNoContent(w)
	}
}

// handleList returns the admin listing, optionally filtered by a CEL
// expression over id, info, scan_count, sold, and expired.
func (c *CodesController) handleList(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	if limit == 0 {
		limit = c.rt.Config().ListLimit
	}

	filter, err := newCELFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter expression")
		return
	}

	// Scan without a cap when filtering; the cap applies to matches.
	scanOpts := store.ListOptions{Limit: limit}
	if filter.enabled {
		scanOpts.Limit = 0
	}
	recs, err := c.rt.Store().List(r.Context(), scanOpts)
	if err != nil {
		c.logger.Error("list failed", logpkg.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to list codes")
		return
	}

	today := record.DateOf(timeNow())
	resp := listResp{Codes: []codeJSON{}}
	for _, rec := range recs {
		if !filter.Eval(rec, today) {
			continue
		}
		resp.Codes = append(resp.Codes, codeView(rec))
		if limit > 0 && len(resp.Codes) >= limit {
			break
		}
	}
	writeJSON(w, resp)
}
