package fakeportal

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

// Request is one handled request as seen by the portal.
type Request struct {
	ID         uuid.UUID
	Method     string
	Path       string
	Account    string
	StatusCode int
	Time       time.Time
	Duration   time.Duration
}

// requestLog keeps the most recent requests in a fixed-size ring.
type requestLog struct {
	mu       sync.RWMutex
	records  []Request
	next     uint64
	size     uint64
	capacity uint64
}

func newRequestLog(capacity uint64) *requestLog {
	if capacity == 0 {
		capacity = DefaultRequestLogCapacity
	}
	return &requestLog{
		records:  make([]Request, capacity),
		capacity: capacity,
	}
}

func (l *requestLog) add(r Request) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records[l.next%l.capacity] = r
	l.next++
	if l.size < l.capacity {
		l.size++
	}
}

// last returns up to n records, oldest first.
func (l *requestLog) last(n uint64) []Request {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := min(n, l.size)
	result := make([]Request, count)
	start := l.next - count
	for i := uint64(0); i < count; i++ {
		result[i] = l.records[(start+i)%l.capacity]
	}
	return result
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// record logs every request that does not target a static asset.
func (p *Portal) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/favicon") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		account, _ := p.accountOf(r)
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		req := Request{
			ID:         uuid.Must(uuid.NewV7()),
			Method:     r.Method,
			Path:       r.URL.Path,
			Account:    account.Email,
			StatusCode: rec.status,
			Time:       start,
			Duration:   time.Since(start),
		}
		p.requests.add(req)
		p.logger.Debug("Request handled",
			slog.String("method", req.Method),
			slog.String("path", req.Path),
			slog.Int("status", req.StatusCode),
			slog.String("account", req.Account),
		)
	})
}
