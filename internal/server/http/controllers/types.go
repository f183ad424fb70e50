package controllers

import (
	"time"

	"github.com/doebialale/EZRAVERIFY/internal/record"
)

// timeNow is swapped in tests.
var timeNow = time.Now

// Request/response types for the code management API.

// issueReq represents a request to issue a new code.
type issueReq struct {
	// ManufacturingDate is an ISO date; empty means today.
	ManufacturingDate string `json:"manufacturingDate"`
	// Info is the descriptive label; empty means generated.
	Info string `json:"info"`
}

// issueResp is the result of a successful issuance.
type issueResp struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	QRPath            string `json:"qrPath,omitempty"`
	ManufacturingDate string `json:"manufacturingDate"`
	ExpirationDate    string `json:"expirationDate"`
	Info              string `json:"info"`
}

// saleReq represents a request to record a sale.
type saleReq struct {
	ID string `json:"id"`
	// SoldDate is an ISO date; empty means today.
	SoldDate string `json:"soldDate"`
}

// codeJSON is the listing view of one record.
type codeJSON struct {
	ID                string `json:"id"`
	ManufacturingDate string `json:"manufacturingDate"`
	ExpirationDate    string `json:"expirationDate"`
	Info              string `json:"info"`
	SoldDate          string `json:"soldDate,omitempty"`
	ScanCount         uint64 `json:"scanCount"`
}

// listResp wraps the admin listing.
type listResp struct {
	Codes []codeJSON `json:"codes"`
}

func codeView(r record.Record) codeJSON {
	v := codeJSON{
		ID:                r.ID,
		ManufacturingDate: r.ManufacturingDate.String(),
		ExpirationDate:    r.ExpirationDate.String(),
		Info:              r.Info,
		ScanCount:         r.ScanCount,
	}
	if r.SoldDate != nil {
		v.SoldDate = r.SoldDate.String()
	}
	return v
}
