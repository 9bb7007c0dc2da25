package gatekit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/quillcms/gatekit/audit"
	"github.com/quillcms/gatekit/instrumentation"
	"github.com/quillcms/gatekit/ratelimit"
)

// IdentityUnknown is the caller identity used when no forwarding header
// or usable remote address is present
const IdentityUnknown = "unknown"

// ClientIdentity derives the caller key from client-supplied forwarding
// headers: the first IP in a comma-separated X-Forwarded-For list, else
// a single X-Real-IP header, else IdentityUnknown. The result is computed
// fresh per request and never persisted.
func ClientIdentity(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return IdentityUnknown
}

// Gate wires the limiter, auditor and instrumentation into HTTP
// middleware. Construct one per process and pass it to handlers
// explicitly; a Gate holds no mutable state.
type Gate struct {
	cfg     Config
	auditor *audit.Logger
	metrics *instrumentation.Metrics
	tracer  trace.Tracer
}

// New creates a gate from the configuration. Misconfiguration (such as an
// empty domain allow-list) fails here so it halts startup rather than
// silently rejecting everything at request time.
func New(cfg Config, auditor *audit.Logger) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if auditor == nil {
		auditor = audit.NewLogger(audit.NewSlogSink(cfg.logger()))
	}
	g := &Gate{cfg: cfg, auditor: auditor}
	if cfg.Instrumentation != nil {
		g.metrics = cfg.Instrumentation.Metrics()
		g.tracer = cfg.Instrumentation.Tracer("middleware")
	}
	return g, nil
}

// Auditor returns the gate's security event logger
func (g *Gate) Auditor() *audit.Logger { return g.auditor }

// identity resolves the caller key for this request. Forwarding headers
// are only honored when the deployment declares a trusted proxy in front.
func (g *Gate) identity(r *http.Request) string {
	if g.cfg.TrustProxyHeaders {
		return ClientIdentity(r)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return IdentityUnknown
}

// RateLimit returns middleware enforcing the given limiter. Every
// response carries X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset (unix seconds); rejections answer 429 with
// Retry-After and emit a rate_limit security event.
func (g *Gate) RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	preset := limiter.Config().KeyPrefix
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity := g.identity(r)

			if g.tracer != nil {
				var span trace.Span
				ctx, span = g.tracer.Start(ctx, "gatekit.ratelimit.check")
				defer span.End()
			}

			start := time.Now()
			res := limiter.Check(ctx, identity)
			if g.metrics != nil {
				g.metrics.RecordStoreRoundTrip(ctx, float64(time.Since(start).Microseconds())/1000.0)
				g.metrics.RecordRateLimitDecision(ctx, preset, res.Allowed)
				if res.FailedOpen {
					g.metrics.RecordStoreError(ctx, preset)
				}
			}

			setRateLimitHeaders(w, res)

			if !res.Allowed {
				retry := int(time.Until(res.Reset).Seconds())
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				g.auditor.LogRateLimit(r.URL.Path, r.Method, identity, res.Limit)
				if g.metrics != nil {
					g.metrics.RecordAuditEvent(ctx, string(audit.EventRateLimit))
				}
				writeJSONError(w, ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MethodGuard returns middleware answering 405 with an Allow header for
// any method outside the permitted set
func (g *Gate) MethodGuard(allowed ...string) func(http.Handler) http.Handler {
	allowHeader := strings.Join(allowed, ", ")
	permitted := make(map[string]bool, len(allowed))
	for _, m := range allowed {
		permitted[strings.ToUpper(m)] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !permitted[r.Method] {
				w.Header().Set("Allow", allowHeader)
				writeJSONError(w, ErrMethodNotAllowed)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteUnauthorized answers 401 with the fixed, cause-independent body
// and records an auth_failure event. Callers must not vary the response
// with the failure reason.
func (g *Gate) WriteUnauthorized(w http.ResponseWriter, r *http.Request) {
	g.auditor.LogAuthFailure(r.URL.Path, g.identity(r), r.UserAgent())
	if g.metrics != nil {
		g.metrics.RecordAuditEvent(r.Context(), string(audit.EventAuthFailure))
	}
	writeJSONError(w, ErrUnauthorized)
}

// WriteForbidden answers 403 with the fixed body and records an
// authz_failure event
func (g *Gate) WriteForbidden(w http.ResponseWriter, r *http.Request) {
	g.auditor.Log(audit.Event{
		Type:       audit.EventAuthzFailure,
		Endpoint:   r.URL.Path,
		Method:     r.Method,
		StatusCode: http.StatusForbidden,
		IP:         g.identity(r),
		UserAgent:  r.UserAgent(),
	})
	if g.metrics != nil {
		g.metrics.RecordAuditEvent(r.Context(), string(audit.EventAuthzFailure))
	}
	writeJSONError(w, ErrForbidden)
}

func setRateLimitHeaders(w http.ResponseWriter, res ratelimit.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10))
}

// writeJSONError writes the gate error as {"error": "<message>"}. The
// body shape is shared by every rejection class so callers cannot infer
// anything beyond the status code and message.
func writeJSONError(w http.ResponseWriter, gerr *GateError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(gerr.Status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": gerr.Message})
}
