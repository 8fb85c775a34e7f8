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

// PostNLAdapter handles tracking for PostNL shipments via the consumer API.
type PostNLAdapter struct {
	baseURL string
	client  *http.Client
}

// Matches track-and-trace/BARCODE and the longer BARCODE-CC-1234AB form
// (separated by either dashes or slashes).
var postnlURLRx = regexp.MustCompile(
	`track-and-trace/(?P<barcode>[0-9A-Z]+)(?:[-/](?P<country>[A-Z]{2})[-/](?P<postcode>\d{4}[A-Z]{2}))?`)

// NewPostNLAdapter creates a new PostNLAdapter with the given API base URL.
func NewPostNLAdapter(baseURL string, client *http.Client) *PostNLAdapter {
	return &PostNLAdapter{
		baseURL: baseURL,
		client:  client,
	}
}

// Carrier identifies this adapter as PostNL.
func (a *PostNLAdapter) Carrier() domain.Carrier {
	return domain.CarrierPostNL
}

// CanHandle returns true for PostNL tracking page URLs.
func (a *PostNLAdapter) CanHandle(url string) bool {
	return strings.Contains(url, "postnl")
}

// FetchRaw retrieves the raw JSON payload for the shipment behind trackingURL.
func (a *PostNLAdapter) FetchRaw(ctx context.Context, trackingURL string, opts domain.FetchOptions) (string, error) {
	barcode, country, postcode := postnlExtract(trackingURL)
	if barcode == "" {
		return "", fmt.Errorf("%w: no barcode in %s", domain.ErrMalformedURL, trackingURL)
	}
	if postcode == "" {
		postcode = opts.Postcode
	}
	return fetchBody(ctx, a.client, a.buildURL(barcode, country, postcode, opts.Language))
}

// postnlExtract pulls barcode, country and postcode out of a tracking page URL.
func postnlExtract(url string) (barcode, country, postcode string) {
	caps := postnlURLRx.FindStringSubmatch(url)
	if caps == nil {
		return "", "", ""
	}
	return caps[1], caps[2], caps[3]
}

// buildURL composes the API URL. Country and postcode are only appended when
// both are known; the API rejects a partial pair.
func (a *PostNLAdapter) buildURL(barcode, country, postcode, language string) string {
	key := barcode
	if country != "" && postcode != "" {
		key = fmt.Sprintf("%s-%s-%s", barcode, country, postcode)
	}
	if language == "" {
		language = "en"
	}
	return fmt.Sprintf("%s/track-and-trace/api/trackAndTrace/%s?language=%s", a.baseURL, key, language)
}

// postnlResponse represents the JSON structure from the PostNL API.
type postnlResponse struct {
	Colli map[string]postnlPackage `json:"colli"`
}

type postnlPackage struct {
	Barcode          string              `json:"barcode"`
	Sender           *postnlParty        `json:"sender"`
	Recipient        *postnlParty        `json:"recipient"`
	DeliveryDate     *time.Time          `json:"deliveryDate"`
	RouteInformation *postnlRouteInfo    `json:"routeInformation"`
	AnalyticsInfo    postnlAnalyticsInfo `json:"analyticsInfo"`
	Eta              *postnlEta          `json:"eta"`
}

type postnlParty struct {
	Names struct {
		CompanyName string `json:"companyName"`
		PersonName  string `json:"personName"`
	} `json:"names"`
}

// name prefers the company name over the person name.
func (p *postnlParty) name() string {
	if p == nil {
		return ""
	}
	if p.Names.CompanyName != "" {
		return p.Names.CompanyName
	}
	return p.Names.PersonName
}

type postnlRouteInfo struct {
	ExpectedDeliveryTime       *time.Time        `json:"expectedDeliveryTime"`
	ExpectedDeliveryTimeWindow *postnlTimeWindow `json:"expectedDeliveryTimeWindow"`
}

type postnlTimeWindow struct {
	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`
}

type postnlAnalyticsInfo struct {
	AllObservations []postnlObservation `json:"allObservations"`
}

type postnlObservation struct {
	ObservationDate time.Time `json:"observationDate"`
	Description     string    `json:"description"`
}

type postnlEta struct {
	Type  string     `json:"type"`
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// Parse converts a raw PostNL payload into a Package.
func (a *PostNLAdapter) Parse(trackingURL, raw string) (*domain.Package, error) {
	var resp postnlResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse postnl response: %w", err)
	}
	if len(resp.Colli) == 0 {
		return nil, fmt.Errorf("no packages in payload")
	}

	// The payload keys the package by its own barcode; there is only one.
	var p postnlPackage
	for _, candidate := range resp.Colli {
		p = candidate
		break
	}

	pkg := &domain.Package{
		Barcode:     p.Barcode,
		Carrier:     domain.CarrierPostNL,
		Sender:      p.Sender.name(),
		Recipient:   p.Recipient.name(),
		Status:      statusFromDelivery(p.DeliveryDate),
		Events:      p.events(),
		Eta:         p.eta(),
		EtaWindow:   p.etaWindow(),
		DeliveredAt: p.DeliveryDate,
	}
	if pkg.Barcode == "" {
		pkg.Barcode, _, _ = postnlExtract(trackingURL)
	}
	return pkg, nil
}

func (p *postnlPackage) events() []domain.Event {
	events := make([]domain.Event, 0, len(p.AnalyticsInfo.AllObservations))
	for _, obs := range p.AnalyticsInfo.AllObservations {
		events = append(events, domain.Event{
			Timestamp:   obs.ObservationDate,
			Description: obs.Description,
		})
	}
	return events
}

func (p *postnlPackage) eta() *time.Time {
	if p.RouteInformation == nil {
		return nil
	}
	return p.RouteInformation.ExpectedDeliveryTime
}

func (p *postnlPackage) etaWindow() *domain.TimeWindow {
	if p.RouteInformation != nil && p.RouteInformation.ExpectedDeliveryTimeWindow != nil {
		return &domain.TimeWindow{
			Start: p.RouteInformation.ExpectedDeliveryTimeWindow.StartDateTime,
			End:   p.RouteInformation.ExpectedDeliveryTimeWindow.EndDateTime,
		}
	}
	if p.Eta != nil && p.Eta.Start != nil && p.Eta.End != nil {
		return &domain.TimeWindow{Start: *p.Eta.Start, End: *p.Eta.End}
	}
	return nil
}
