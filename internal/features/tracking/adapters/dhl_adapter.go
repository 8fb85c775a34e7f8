package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"packtrack/internal/features/tracking/domain"
)

// DHLAdapter handles tracking for DHL and DHL eCommerce shipments.
type DHLAdapter struct {
	baseURL string
	client  *http.Client
}

var (
	dhlURLRx  = regexp.MustCompile(`dhl\.com.*tracking-id=([A-Z0-9-].*)`)
	dhlEcomRx = regexp.MustCompile(`dhlecommerce.*tracktrace/([A-Z0-9-]+)/?([A-Z0-9-]+)?\??`)
)

// NewDHLAdapter creates a new DHLAdapter with the given API base URL.
func NewDHLAdapter(baseURL string, client *http.Client) *DHLAdapter {
	return &DHLAdapter{
		baseURL: baseURL,
		client:  client,
	}
}

// Carrier identifies this adapter as DHL.
func (a *DHLAdapter) Carrier() domain.Carrier {
	return domain.CarrierDHL
}

// CanHandle returns true for dhl.com and dhlecommerce tracking URLs.
func (a *DHLAdapter) CanHandle(url string) bool {
	return strings.Contains(url, "dhl")
}

// FetchRaw retrieves the raw JSON payload for the shipment behind trackingURL.
func (a *DHLAdapter) FetchRaw(ctx context.Context, trackingURL string, opts domain.FetchOptions) (string, error) {
	key, err := dhlKey(trackingURL, opts.Postcode)
	if err != nil {
		return "", err
	}
	apiURL := fmt.Sprintf("%s/track-trace?key=%s&role=consumer-receiver", a.baseURL, key)
	return fetchBody(ctx, a.client, apiURL)
}

// dhlKey builds the API lookup key: the barcode, with the postcode appended
// when one is known. The dhl.com form never embeds a postcode; the
// dhlecommerce form may carry it as a path segment.
func dhlKey(url, defaultPostcode string) (string, error) {
	if caps := dhlURLRx.FindStringSubmatch(url); caps != nil {
		barcode := caps[1]
		if defaultPostcode != "" {
			return barcode + "%2B" + defaultPostcode, nil
		}
		return barcode, nil
	}
	if caps := dhlEcomRx.FindStringSubmatch(url); caps != nil {
		barcode := caps[1]
		postcode := caps[2]
		if postcode == "" {
			postcode = defaultPostcode
		}
		if postcode != "" {
			return barcode + "%2B" + postcode, nil
		}
		return barcode, nil
	}
	return "", fmt.Errorf("%w: no barcode in %s", domain.ErrMalformedURL, url)
}

// dhlBarcode returns only the barcode part, for display fallback.
func dhlBarcode(url string) string {
	if caps := dhlURLRx.FindStringSubmatch(url); caps != nil {
		return caps[1]
	}
	if caps := dhlEcomRx.FindStringSubmatch(url); caps != nil {
		return caps[1]
	}
	return ""
}

// dhlResponse is a list of shipments; the API returns one per key.
type dhlResponse []dhlPackage

type dhlPackage struct {
	Barcode                  string          `json:"barcode"`
	DeliveredAt              *time.Time      `json:"deliveredAt"`
	PlannedDeliveryTimeframe string          `json:"plannedDeliveryTimeframe"`
	Receiver                 *dhlParty       `json:"receiver"`
	Shipper                  *dhlParty       `json:"shipper"`
	Events                   []dhlEvent      `json:"events"`
	TransitTime              *dhlTransitTime `json:"transitTime"`
}

type dhlParty struct {
	Name string `json:"name"`
}

type dhlTransitTime struct {
	ExpectedDeliveryMoment time.Time `json:"expectedDeliveryMoment"`
}

type dhlEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
}

// Parse converts a raw DHL payload into a Package.
func (a *DHLAdapter) Parse(trackingURL, raw string) (*domain.Package, error) {
	var resp dhlResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse dhl response: %w", err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("no packages in payload")
	}
	p := resp[0]

	window, err := p.etaWindow()
	if err != nil {
		return nil, err
	}

	pkg := &domain.Package{
		Barcode:     p.Barcode,
		Carrier:     domain.CarrierDHL,
		Sender:      p.sender(),
		Recipient:   p.recipient(),
		Status:      statusFromDelivery(p.DeliveredAt),
		Events:      p.events(),
		Eta:         p.eta(),
		EtaWindow:   window,
		DeliveredAt: p.DeliveredAt,
	}
	if pkg.Barcode == "" {
		pkg.Barcode = dhlBarcode(trackingURL)
	}
	return pkg, nil
}

func (p *dhlPackage) events() []domain.Event {
	events := make([]domain.Event, 0, len(p.Events))
	for _, e := range p.Events {
		events = append(events, domain.Event{
			Timestamp:   e.Timestamp,
			Description: fmt.Sprintf("%s: %s", e.Category, e.Status),
		})
	}
	return events
}

func (p *dhlPackage) eta() *time.Time {
	if p.TransitTime == nil {
		return nil
	}
	t := p.TransitTime.ExpectedDeliveryMoment
	return &t
}

// etaWindow parses the "start/end" timeframe string the API uses.
func (p *dhlPackage) etaWindow() (*domain.TimeWindow, error) {
	if p.PlannedDeliveryTimeframe == "" {
		return nil, nil
	}
	left, right, found := strings.Cut(p.PlannedDeliveryTimeframe, "/")
	if !found {
		return nil, fmt.Errorf("couldn't parse delivery timeframe %q", p.PlannedDeliveryTimeframe)
	}
	start, err := time.Parse(time.RFC3339, left)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse timeframe start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, right)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse timeframe end: %w", err)
	}
	return &domain.TimeWindow{Start: start, End: end}, nil
}

func (p *dhlPackage) sender() string {
	if p.Shipper == nil {
		return ""
	}
	return p.Shipper.Name
}

func (p *dhlPackage) recipient() string {
	if p.Receiver == nil {
		return ""
	}
	return p.Receiver.Name
}
