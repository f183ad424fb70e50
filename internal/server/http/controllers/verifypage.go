package controllers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/doebialale/EZRAVERIFY/internal/runtime"
	"github.com/doebialale/EZRAVERIFY/internal/verify"
	logpkg "github.com/doebialale/EZRAVERIFY/pkg/log"
)

// VerifyController serves the public verification pages. The root path
// shows a landing page; any other path segment is treated as a code id.
type VerifyController struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// NewVerifyController creates a new verification page controller.
func NewVerifyController(rt *runtime.Runtime, logger logpkg.Logger) *VerifyController {
	return &VerifyController{rt: rt, logger: logger.WithComponent("verify")}
}

// RegisterRoutes registers the catch-all verification route.
func (c *VerifyController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", c.handleVerify)
}

func (c *VerifyController) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	id := strings.Trim(r.URL.Path, "/")
	if id == "" {
		c.renderPage(w, pageData{Landing: true})
		return
	}

	res, err := c.rt.Engine().Verify(r.Context(), id)
	if err != nil {
		c.logger.Error("verify failed", logpkg.Str("id", id), logpkg.Err(err))
		writeError(w, http.StatusInternalServerError, "Verification failed")
		return
	}
	if m := c.rt.Metrics(); m != nil {
		m.ObserveVerification(res.Outcome.String())
	}

	data := pageData{Outcome: res.Outcome, MaxScans: c.rt.Engine().MaxScans()}
	if res.Outcome != verify.OutcomeUnknown {
		rec := res.Record
		data.ID = rec.ID
		data.ManufacturingDate = rec.ManufacturingDate.String()
		data.ExpirationDate = rec.ExpirationDate.String()
		data.Info = rec.Info
		data.ScanCount = rec.ScanCount
		if rec.SoldDate != nil {
			data.SoldDate = rec.SoldDate.String()
		}
	}
	c.renderPage(w, data)
}

func (c *VerifyController) renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := verifyPageTmpl.Execute(w, data); err != nil {
		c.logger.Error("render failed", logpkg.Err(err))
	}
}

// pageData feeds the verification page template.
type pageData struct {
	Landing           bool
	Outcome           verify.Outcome
	ID                string
	ManufacturingDate string
	ExpirationDate    string
	Info              string
	SoldDate          string
	ScanCount         uint64
	MaxScans          uint64
}

func (d pageData) Valid() bool         { return d.Outcome == verify.OutcomeValid }
func (d pageData) Expired() bool       { return d.Outcome == verify.OutcomeExpired }
func (d pageData) LimitExceeded() bool { return d.Outcome == verify.OutcomeLimitExceeded }
func (d pageData) Unknown() bool       { return d.Outcome == verify.OutcomeUnknown }

var verifyPageTmpl = template.Must(template.New("verify").Parse(`<!doctype html>
<html><head><meta charset='utf-8'>
<title>Code Lookup</title>
<style>
body{font-family:Arial, sans-serif; margin:40px;}
h1{margin-bottom:16px;}
p{margin:8px 0;}
.verified{display:flex; align-items:center; gap:10px; margin:0 0 18px 0;}
.verified-text{background:#1f7a1f; color:#fff; padding:6px 10px; font-weight:700; letter-spacing:0.5px; border-radius:6px;}
.verified-icon svg{width:28px; height:28px;}
.verified-icon circle{fill:#e6f1ff; stroke:#1f5fa8; stroke-width:2;}
.verified-icon path{fill:none; stroke:#1f5fa8; stroke-width:3; stroke-linecap:round; stroke-linejoin:round;}
.unverified{display:flex; align-items:center; gap:10px; margin:0 0 18px 0;}
.unverified-text{background:#a81f1f; color:#fff; padding:6px 10px; font-weight:700; letter-spacing:0.5px; border-radius:6px;}
.unverified-icon svg{width:28px; height:28px;}
.unverified-icon circle{fill:#ffecec; stroke:#a81f1f; stroke-width:2;}
.unverified-icon path{fill:none; stroke:#a81f1f; stroke-width:3; stroke-linecap:round;}
.expired{display:flex; align-items:center; gap:10px; margin:0 0 18px 0;}
.expired-text{background:#b86800; color:#fff; padding:6px 10px; font-weight:700; letter-spacing:0.5px; border-radius:6px;}
.expired-icon svg{width:28px; height:28px;}
.expired-icon circle{fill:#fff4e6; stroke:#b86800; stroke-width:2;}
.expired-icon path{fill:none; stroke:#b86800; stroke-width:3; stroke-linecap:round;}
.warning{color:#b86800; font-style:italic;}
</style></head><body>
{{if .Landing}}<h1>Code Lookup</h1><p>Scan a QR code or visit /&lt;code&gt;.</p>
{{else if .Unknown}}<div class='unverified'>
<span class='unverified-text'>UNVERIFIED</span>
<span class='unverified-icon'><svg viewBox='0 0 24 24' aria-hidden='true' focusable='false'><circle cx='12' cy='12' r='11'></circle><path d='M8 8l8 8M16 8l-8 8'></path></svg></span>
</div>
{{else if .Expired}}<div class='expired'>
<span class='expired-text'>EXPIRED</span>
<span class='expired-icon'><svg viewBox='0 0 24 24' aria-hidden='true' focusable='false'><circle cx='12' cy='12' r='11'></circle><path d='M12 7v6M12 16v1'></path></svg></span>
</div>
<h1>Item Details</h1>
<p><strong>Code:</strong> {{.ID}}</p>
<p><strong>Expiration Date:</strong> {{.ExpirationDate}}</p>
<p class='warning'>This item has passed its expiration date.</p>
{{else if .LimitExceeded}}<div class='expired'>
<span class='expired-text'>SCAN LIMIT REACHED</span>
<span class='expired-icon'><svg viewBox='0 0 24 24' aria-hidden='true' focusable='false'><circle cx='12' cy='12' r='11'></circle><path d='M12 7v6M12 16v1'></path></svg></span>
</div>
<h1>Item Details</h1>
<p><strong>Code:</strong> {{.ID}}</p>
<p><strong>Scans:</strong> {{.ScanCount}}/{{.MaxScans}} (Maximum reached)</p>
<p class='warning'>This QR code has reached its maximum scan limit.</p>
{{else}}<div class='verified'>
<span class='verified-text'>VERIFIED</span>
<span class='verified-icon'><svg viewBox='0 0 24 24' aria-hidden='true' focusable='false'><circle cx='12' cy='12' r='11'></circle><path d='M7 12.5l3 3 7-7'></path></svg></span>
</div>
<h1>Item Details</h1>
<p><strong>Code:</strong> {{.ID}}</p>
<p><strong>Manufacturing Date:</strong> {{.ManufacturingDate}}</p>
<p><strong>Expiration Date:</strong> {{.ExpirationDate}}</p>
{{if .SoldDate}}<p><strong>Sold Date:</strong> {{.SoldDate}}</p>{{else}}<p><strong>Sold Date:</strong> Not yet sold</p>{{end}}
<p><strong>Info:</strong> {{.Info}}</p>
<p><strong>Scans:</strong> {{.ScanCount}}/{{.MaxScans}}</p>
{{end}}</body></html>
`))
