package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/walker-events/internal/event"
	"github.com/pfrederiksen/walker-events/internal/logger"
)

// Listing site endpoints and the request defaults used against them.
const (
	ListingURL = "https://www.walkerplus.com/event/"
	SiteOrigin = "https://www.walkerplus.com"
	UserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	Timeout    = 10 * time.Second

	DefaultRadiusKM   = 10
	DefaultMaxResults = 5
	DefaultSort       = "date"
)

// titleSelectors are tried in order inside each container.
var titleSelectors = []string{"h3", "h2", ".event-title"}

// Options overrides the scraper defaults. Zero values keep the default.
type Options struct {
	BaseURL    string
	Origin     string
	UserAgent  string
	RadiusKM   int
	MaxResults int
	Timeout    time.Duration
	Strategies []ContainerStrategy
	Logger     *logger.Logger
}

// Scraper handles fetching and parsing event listings
type Scraper struct {
	client     *http.Client
	url        string
	origin     string
	userAgent  string
	radius     int
	maxResults int
	strategies []ContainerStrategy
	log        *logger.Logger
}

// New creates a new Scraper instance with the default settings
func New() *Scraper {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Scraper, filling unset options with defaults
func NewWithOptions(opts Options) *Scraper {
	s := &Scraper{
		url:        ListingURL,
		origin:     SiteOrigin,
		userAgent:  UserAgent,
		radius:     DefaultRadiusKM,
		maxResults: DefaultMaxResults,
		strategies: DefaultStrategies(),
		log:        logger.Default(),
	}
	timeout := Timeout

	if opts.BaseURL != "" {
		s.url = opts.BaseURL
	}
	if opts.Origin != "" {
		s.origin = strings.TrimRight(opts.Origin, "/")
	}
	if opts.UserAgent != "" {
		s.userAgent = opts.UserAgent
	}
	if opts.RadiusKM > 0 {
		s.radius = opts.RadiusKM
	}
	if opts.MaxResults > 0 {
		s.maxResults = opts.MaxResults
	}
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	if len(opts.Strategies) > 0 {
		s.strategies = opts.Strategies
	}
	if opts.Logger != nil {
		s.log = opts.Logger
	}

	s.client = &http.Client{Timeout: timeout}
	return s
}

// Scrape fetches the listing for the given coordinate and YYYY-MM-DD date and
// returns up to MaxResults records in document order. Failures are logged and
// produce an empty result.
func (s *Scraper) Scrape(ctx context.Context, lat, lng float64, date string) []event.Record {
	fields := logger.Fields{"lat": lat, "lng": lng, "date": date}
	logger.IncrCounter("scrape.requests")

	start := time.Now()
	body, err := s.fetch(ctx, lat, lng, date)
	logger.RecordTiming("scrape.fetch", time.Since(start))
	if err != nil {
		logger.IncrCounter("scrape.failures")
		s.log.Error("Fetching event listing failed", fields, err)
		return []event.Record{}
	}
	defer body.Close()

	records, err := s.ParseEvents(body)
	if err != nil {
		logger.IncrCounter("scrape.failures")
		s.log.Error("Parsing event listing failed", fields, err)
		return []event.Record{}
	}

	logger.AddCounter("scrape.events", int64(len(records)))
	fields["events"] = len(records)
	s.log.Info("Scraped event listing", fields)
	return records
}

// BuildURL returns the listing URL with the search query for a coordinate and date.
func (s *Scraper) BuildURL(lat, lng float64, date string) (string, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return "", fmt.Errorf("parsing listing URL: %w", err)
	}

	q := u.Query()
	q.Set("date", event.CompactDate(date))
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(s.radius))
	q.Set("sort", DefaultSort)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// fetch performs the listing request and returns the decoded body
func (s *Scraper) fetch(ctx context.Context, lat, lng float64, date string) (io.ReadCloser, error) {
	target, err := s.BuildURL(lat, lng, date)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	s.setBrowserHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := decodeBody(resp)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	return body, nil
}

// setBrowserHeaders makes the request look like a desktop browser; the site
// rejects obvious bots.
func (s *Scraper) setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.7,en;q=0.3")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// ParseEvents extracts event records from listing HTML
func (s *Scraper) ParseEvents(r io.Reader) ([]event.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	records := make([]event.Record, 0, s.maxResults)

	containers, strategy, err := findContainers(doc, s.strategies)
	if err != nil {
		return nil, err
	}
	if containers == nil {
		s.log.Debug("No event containers matched", nil)
		return records, nil
	}

	// The limit applies to containers, before records are filtered
	containers.Slice(0, min(containers.Length(), s.maxResults)).Each(func(i int, sel *goquery.Selection) {
		rec, err := s.extractRecord(sel)
		if err != nil {
			s.log.Warn("Skipping event container", logger.Fields{
				"index":    i,
				"strategy": strategy,
				"error":    err.Error(),
			})
			return
		}

		if rec.Title == "" || rec.LinkURL == "" {
			return
		}
		records = append(records, rec)
	})

	return records, nil
}

// extractRecord reads title, image and link from one container
func (s *Scraper) extractRecord(sel *goquery.Selection) (rec event.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extracting record: %v", r)
		}
	}()

	rec.Title = extractTitle(sel)

	if img := sel.Find("img").First(); img.Length() > 0 {
		src := img.AttrOr("src", "")
		if src == "" {
			src = img.AttrOr("data-src", "")
		}
		imageURL, err := s.absoluteURL(src)
		if err != nil {
			return rec, fmt.Errorf("image URL: %w", err)
		}
		rec.ImageURL = imageURL
	}

	if link := sel.Find("a").First(); link.Length() > 0 {
		linkURL, err := s.absoluteURL(link.AttrOr("href", ""))
		if err != nil {
			return rec, fmt.Errorf("link URL: %w", err)
		}
		rec.LinkURL = linkURL
	}

	return rec, nil
}

// extractTitle returns the text of the first title-like element, or
// event.UnknownTitle when the container has none.
func extractTitle(sel *goquery.Selection) string {
	for _, selector := range titleSelectors {
		if el := sel.Find(selector).First(); el.Length() > 0 {
			return strings.TrimSpace(el.Text())
		}
	}
	return event.UnknownTitle
}

// absoluteURL resolves a reference against the site origin. References that
// do not end up as http or https URLs yield "".
func (s *Scraper) absoluteURL(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}

	base, err := url.Parse(s.origin)
	if err != nil {
		return "", fmt.Errorf("parsing site origin: %w", err)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", ref, err)
	}

	resolved := base.ResolveReference(rel)
	switch strings.ToLower(resolved.Scheme) {
	case "http", "https":
		return resolved.String(), nil
	default:
		return "", nil
	}
}
