package loader

import (
	"fmt"
	"net/url"
	"strconv"

	"candleview/internal/domain"
	"candleview/internal/ports"
)

// Location is the bookmarkable URL that mirrors the current view. It is
// rewritten in place after each successful fetch.
type Location struct {
	u *url.URL
}

// ParseLocation parses a chart URL. An empty string yields a bare location.
func ParseLocation(raw string) (*Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse location failed: %w: %w", ports.ErrInvalidRequest, err)
	}
	return &Location{u: u}, nil
}

// Apply overlays the URL's query parameters on view. Absent parameters leave
// the view's values alone; malformed ones are an error.
func (l *Location) Apply(view domain.ViewState) (domain.ViewState, error) {
	q := l.u.Query()
	if s := q.Get("symbol"); s != "" {
		view.Symbol = s
	}
	if s := q.Get("interval"); s != "" {
		iv, err := domain.ParseInterval(s)
		if err != nil {
			return view, fmt.Errorf("location interval: %w: %w", ports.ErrInvalidRequest, err)
		}
		view.Interval = iv
	}
	if s := q.Get("min_domain"); s != "" {
		if err := view.Config.Set("strong_point.min_domain", s); err != nil {
			return view, fmt.Errorf("location min_domain: %w: %w", ports.ErrInvalidRequest, err)
		}
	}
	for _, p := range []struct {
		name string
		dst  **int64
	}{{"start", &view.Start}, {"end", &view.End}} {
		s := q.Get(p.name)
		if s == "" || s == "0" {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return view, fmt.Errorf("location %s: %w: %w", p.name, ports.ErrInvalidRequest, err)
		}
		*p.dst = domain.Int64(n)
	}
	if start, end, ok := view.Window(); ok && start > end {
		return view, fmt.Errorf("location window %d > %d: %w", start, end, ports.ErrInvalidRequest)
	}
	return view, nil
}

// Replace rewrites the query parameters from the fetched query and the
// window now in view.
func (l *Location) Replace(q domain.ChartQuery, view domain.ViewState) {
	v := url.Values{}
	v.Set("symbol", q.Symbol)
	v.Set("interval", string(q.Interval))
	if q.MinDomain != nil {
		v.Set("min_domain", strconv.FormatFloat(*q.MinDomain, 'g', -1, 64))
	}
	if start, end, ok := view.Window(); ok {
		v.Set("start", strconv.FormatInt(start, 10))
		v.Set("end", strconv.FormatInt(end, 10))
	}
	l.u.RawQuery = v.Encode()
}

// String returns the URL.
func (l *Location) String() string { return l.u.String() }
