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

// GLSAdapter handles tracking for GLS shipments. The GLS API requires the
// recipient postcode alongside the barcode.
type GLSAdapter struct {
	baseURL string
	client  *http.Client
}

var (
	glsBarcodeRx  = regexp.MustCompile(`parcelNo=([A-Z0-9]+)`)
	glsPostcodeRx = regexp.MustCompile(`zipcode=([A-Z0-9]+)`)
)

// glsLocales maps language hints to the locales the GLS API accepts.
var glsLocales = map[string]string{
	"en": "en-GB",
	"nl": "nl-NL",
	"de": "de-DE",
	"fr": "fr-FR",
}

// NewGLSAdapter creates a new GLSAdapter with the given API base URL.
func NewGLSAdapter(baseURL string, client *http.Client) *GLSAdapter {
	return &GLSAdapter{
		baseURL: baseURL,
		client:  client,
	}
}

// Carrier identifies this adapter as GLS.
func (a *GLSAdapter) Carrier() domain.Carrier {
	return domain.CarrierGLS
}

// CanHandle returns true for gls-info tracking URLs.
func (a *GLSAdapter) CanHandle(url string) bool {
	return strings.Contains(url, "www.gls")
}

// FetchRaw retrieves the raw JSON payload for the shipment behind trackingURL.
// The URL postcode wins over the default; without either the lookup cannot
// be performed at all.
func (a *GLSAdapter) FetchRaw(ctx context.Context, trackingURL string, opts domain.FetchOptions) (string, error) {
	barcode := firstMatch(glsBarcodeRx, trackingURL)
	if barcode == "" {
		return "", fmt.Errorf("%w: no barcode in %s", domain.ErrMalformedURL, trackingURL)
	}
	postcode := firstMatch(glsPostcodeRx, trackingURL)
	if postcode == "" {
		postcode = opts.Postcode
	}
	if postcode == "" {
		return "", fmt.Errorf("%w: no postcode in %s and no default configured", domain.ErrMalformedURL, trackingURL)
	}
	apiURL := fmt.Sprintf("%s/api/tracktrace/v1/%s/postalcode/%s/details/%s",
		a.baseURL, barcode, postcode, glsLocale(opts.Language))
	return fetchBody(ctx, a.client, apiURL)
}

func firstMatch(rx *regexp.Regexp, s string) string {
	caps := rx.FindStringSubmatch(s)
	if caps == nil {
		return ""
	}
	return caps[1]
}

func glsLocale(language string) string {
	if locale, ok := glsLocales[language]; ok {
		return locale
	}
	return "en-GB"
}

// glsTime unmarshals the zone-less timestamps the GLS API uses.
type glsTime struct {
	time.Time
}

func (t *glsTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return fmt.Errorf("couldn't parse gls timestamp %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}

// glsPackage represents the JSON structure from the GLS API.
type glsPackage struct {
	ParcelNo         string             `json:"parcelNo"`
	AddressInfo      *glsAddressInfo    `json:"addressInfo"`
	DeliveryStatus   *glsDeliveryStatus `json:"deliveryStatus"`
	Scans            []glsScan          `json:"scans"`
	DeliveryScanInfo *glsDeliveryScan   `json:"deliveryScanInfo"`
}

type glsAddressInfo struct {
	From      *glsParty `json:"from"`
	Recipient *glsParty `json:"recipient"`
}

type glsParty struct {
	Name string `json:"name"`
}

type glsDeliveryStatus struct {
	EtaTimestamp    *glsTime `json:"etaTimestamp"`
	EtaTimestampMin *glsTime `json:"etaTimestampMin"`
	EtaTimestampMax *glsTime `json:"etaTimestampMax"`
}

type glsScan struct {
	DateTime         *glsTime `json:"dateTime"`
	EventReasonDescr string   `json:"eventReasonDescr"`
}

type glsDeliveryScan struct {
	DateTime    *glsTime `json:"dateTime"`
	IsDelivered bool     `json:"isDelivered"`
}

// Parse converts a raw GLS payload into a Package.
func (a *GLSAdapter) Parse(trackingURL, raw string) (*domain.Package, error) {
	var p glsPackage
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to parse gls response: %w", err)
	}

	events, err := p.events()
	if err != nil {
		return nil, err
	}

	deliveredAt := p.delivered()
	pkg := &domain.Package{
		Barcode:     p.ParcelNo,
		Carrier:     domain.CarrierGLS,
		Sender:      p.sender(),
		Recipient:   p.recipient(),
		Status:      statusFromDelivery(deliveredAt),
		Events:      events,
		Eta:         p.eta(),
		EtaWindow:   p.etaWindow(),
		DeliveredAt: deliveredAt,
	}
	if pkg.Barcode == "" {
		pkg.Barcode = firstMatch(glsBarcodeRx, trackingURL)
	}
	if pkg.Barcode == "" {
		return nil, fmt.Errorf("no barcode in payload or url")
	}
	return pkg, nil
}

func (p *glsPackage) delivered() *time.Time {
	info := p.DeliveryScanInfo
	if info == nil || !info.IsDelivered || info.DateTime == nil {
		return nil
	}
	t := info.DateTime.Time
	return &t
}

func (p *glsPackage) events() ([]domain.Event, error) {
	events := make([]domain.Event, 0, len(p.Scans))
	for _, scan := range p.Scans {
		if scan.DateTime == nil {
			return nil, fmt.Errorf("scan without datetime")
		}
		if scan.EventReasonDescr == "" {
			return nil, fmt.Errorf("scan without description")
		}
		events = append(events, domain.Event{
			Timestamp:   scan.DateTime.Time,
			Description: scan.EventReasonDescr,
		})
	}
	return events, nil
}

func (p *glsPackage) eta() *time.Time {
	if p.DeliveryStatus == nil || p.DeliveryStatus.EtaTimestamp == nil {
		return nil
	}
	t := p.DeliveryStatus.EtaTimestamp.Time
	return &t
}

func (p *glsPackage) etaWindow() *domain.TimeWindow {
	s := p.DeliveryStatus
	if s == nil || s.EtaTimestampMin == nil || s.EtaTimestampMax == nil {
		return nil
	}
	return &domain.TimeWindow{
		Start: s.EtaTimestampMin.Time,
		End:   s.EtaTimestampMax.Time,
	}
}

// sender returns the shipper name; the API reports empty strings for
// anonymous senders.
func (p *glsPackage) sender() string {
	if p.AddressInfo == nil || p.AddressInfo.From == nil {
		return ""
	}
	return p.AddressInfo.From.Name
}

func (p *glsPackage) recipient() string {
	if p.AddressInfo == nil || p.AddressInfo.Recipient == nil {
		return ""
	}
	return p.AddressInfo.Recipient.Name
}
