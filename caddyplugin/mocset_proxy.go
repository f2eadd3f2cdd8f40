// Package caddyplugin wires a MocSet as a Caddy HTTP handler, serving
// point/cone queries over HTTP. Grounded directly on the teacher's
// caddy/pmtiles_proxy.go (module registration, Middleware/Provision/
// ServeHTTP/Caddyfile-unmarshal shape).
package caddyplugin

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/caddyserver/caddy/v2"
	"github.com/caddyserver/caddy/v2/caddyconfig/caddyfile"
	"github.com/caddyserver/caddy/v2/caddyconfig/httpcaddyfile"
	"github.com/caddyserver/caddy/v2/modules/caddyhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/moclib/go-moc/internal/healpixgeo"
	"github.com/moclib/go-moc/moc"
	"github.com/moclib/go-moc/mocset"
)

func init() {
	caddy.RegisterModule(Middleware{})
	httpcaddyfile.RegisterHandlerDirective("moc_query", parseCaddyfile)
}

// Middleware serves MocSet point/cone queries over HTTP at whatever
// route Caddy mounts it on: GET ?lon=<deg>&lat=<deg>[&radius=<deg>].
type Middleware struct {
	StorePath         string `json:"store_path"`
	Depth             uint8  `json:"depth"`
	IncludeDeprecated bool   `json:"include_deprecated"`
	CORSOrigin        string `json:"cors_origin"`

	logger  *zap.Logger
	metrics *metrics
	cors    *cors.Cors
}

// CaddyModule returns the Caddy module information.
func (Middleware) CaddyModule() caddy.ModuleInfo {
	return caddy.ModuleInfo{
		ID:  "http.handlers.moc_query",
		New: func() caddy.Module { return new(Middleware) },
	}
}

func (m *Middleware) Provision(ctx caddy.Context) error {
	m.logger = ctx.Logger()
	m.metrics = createMetrics(log.New(io.Discard, "", log.Ldate))
	if m.CORSOrigin != "" {
		m.cors = cors.New(cors.Options{AllowedOrigins: []string{m.CORSOrigin}})
	}
	if m.Depth == 0 {
		m.Depth = 10
	}
	return nil
}

func (m *Middleware) Validate() error {
	if m.StorePath == "" {
		return fmt.Errorf("moc_query: no store_path")
	}
	return nil
}

func (m Middleware) ServeHTTP(w http.ResponseWriter, r *http.Request, next caddyhttp.Handler) error {
	start := time.Now()
	if m.cors != nil {
		m.cors.HandlerFunc(w, r)
	}

	results, status := m.query(r)
	tracker := m.metrics.requests.WithLabelValues(strconv.Itoa(status))
	tracker.Inc()
	m.metrics.requestDur.WithLabelValues(strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	m.metrics.resultMatches.Observe(float64(len(results)))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status == http.StatusOK {
		json.NewEncoder(w).Encode(results)
	} else {
		json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
	}

	m.logger.Info("moc_query", zap.Int("status", status), zap.Int("matches", len(results)), zap.Duration("duration", time.Since(start)))
	return next.ServeHTTP(w, r)
}

func (m Middleware) query(r *http.Request) ([]mocset.QueryResult, int) {
	q := r.URL.Query()
	lonDeg, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return nil, http.StatusBadRequest
	}
	latDeg, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return nil, http.StatusBadRequest
	}
	radiusDeg := 0.0
	if s := q.Get("radius"); s != "" {
		radiusDeg, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, http.StatusBadRequest
		}
	}
	if radiusDeg <= 0 {
		radiusDeg = 360.0 / math.Pow(2, float64(m.Depth)+2)
	}

	region, err := moc.FromCone[uint64](healpixgeo.Adapter{}, m.Depth, lonDeg*math.Pi/180, latDeg*math.Pi/180, radiusDeg*math.Pi/180)
	if err != nil {
		return nil, http.StatusBadRequest
	}

	results, err := mocset.Query(m.StorePath, region, m.IncludeDeprecated, 0)
	if err != nil {
		return nil, http.StatusInternalServerError
	}
	return results, http.StatusOK
}

func (m *Middleware) UnmarshalCaddyfile(d *caddyfile.Dispenser) error {
	for d.Next() {
		for nesting := d.Nesting(); d.NextBlock(nesting); {
			switch d.Val() {
			case "store_path":
				if !d.Args(&m.StorePath) {
					return d.ArgErr()
				}
			case "depth":
				var depth string
				if !d.Args(&depth) {
					return d.ArgErr()
				}
				num, err := strconv.Atoi(depth)
				if err != nil {
					return d.ArgErr()
				}
				m.Depth = uint8(num)
			case "cors_origin":
				if !d.Args(&m.CORSOrigin) {
					return d.ArgErr()
				}
			case "include_deprecated":
				m.IncludeDeprecated = true
			}
		}
	}
	return nil
}

func parseCaddyfile(h httpcaddyfile.Helper) (caddyhttp.MiddlewareHandler, error) {
	var m Middleware
	err := m.UnmarshalCaddyfile(h.Dispenser)
	return m, err
}

var (
	_ caddy.Provisioner           = (*Middleware)(nil)
	_ caddy.Validator             = (*Middleware)(nil)
	_ caddyhttp.MiddlewareHandler = (*Middleware)(nil)
	_ caddyfile.Unmarshaler       = (*Middleware)(nil)
)
