package pricefeed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/pkg/httputil"
	"github.com/wonny/inout/backend/pkg/logger"
	"github.com/wonny/inout/backend/pkg/redis"
)

// HistoryResponse is the wire form of GET {base}/history
type HistoryResponse struct {
	Series map[string][]Bar `json:"series"`
}

// Bar is one close on the wire; Date is YYYY-MM-DD
type Bar struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// HTTPSource fetches closes from a JSON history API. Responses are cached for
// the rest of the day when a Redis cache is attached.
type HTTPSource struct {
	client  *httputil.Client
	baseURL string
	cache   *redis.Cache
	now     func() time.Time
	logger  *logger.Logger
}

// NewHTTPSource creates an HTTP price source. client carries rate limiting and the breaker.
func NewHTTPSource(client *httputil.Client, baseURL string, log *logger.Logger) *HTTPSource {
	return &HTTPSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		logger:  log.Component("pricefeed.http"),
	}
}

// WithCache attaches a response cache
func (s *HTTPSource) WithCache(c *redis.Cache) *HTTPSource {
	s.cache = c
	return s
}

// History implements contracts.PriceSource
func (s *HTTPSource) History(ctx context.Context, symbols []string, days int) (*contracts.PriceTable, error) {
	var body HistoryResponse
	key := redis.HistoryKey(symbols, days, s.now().Format(time.DateOnly))

	if s.cache != nil {
		found, err := s.cache.Get(ctx, key, &body)
		if err != nil {
			s.logger.WithError(err).Warn("History cache read failed")
		}
		if found {
			return decodeSeries(symbols, body)
		}
	}

	q := url.Values{}
	q.Set("symbols", strings.Join(symbols, ","))
	q.Set("days", strconv.Itoa(days))
	if err := s.client.GetJSON(ctx, s.baseURL+"/history?"+q.Encode(), &body); err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrUpstreamDataUnavailable, err)
	}

	table, err := decodeSeries(symbols, body)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, body, redis.TTLDaily); err != nil {
			s.logger.WithError(err).Warn("History cache write failed")
		}
	}
	return table, nil
}

func decodeSeries(symbols []string, body HistoryResponse) (*contracts.PriceTable, error) {
	series := make(map[string][]contracts.PricePoint, len(body.Series))
	for sym, bars := range body.Series {
		pts := make([]contracts.PricePoint, 0, len(bars))
		for _, b := range bars {
			d, err := time.Parse(time.DateOnly, b.Date)
			if err != nil {
				return nil, fmt.Errorf("%w: bad date %q for %s", contracts.ErrUpstreamDataUnavailable, b.Date, sym)
			}
			pts = append(pts, contracts.PricePoint{Date: d, Close: b.Close})
		}
		series[strings.ToUpper(sym)] = pts
	}
	return contracts.AlignSeries(symbols, series), nil
}
