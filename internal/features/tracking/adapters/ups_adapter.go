package adapter

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"packtrack/internal/features/tracking/domain"

	"github.com/PuerkitoBio/goquery"
)

// UPSAdapter handles tracking for UPS shipments by scraping the
// server-rendered tracking page.
type UPSAdapter struct {
	baseURL string
	client  *http.Client
}

var upsBarcodeRx = regexp.MustCompile(`tracknum=([A-Za-z0-9]+)`)

// upsLocales maps language hints to the locales the UPS site accepts.
var upsLocales = map[string]string{
	"en": "en_US",
	"nl": "nl_NL",
	"de": "de_DE",
	"fr": "fr_FR",
}

// upsTimeLayout is the activity timestamp format on the tracking page.
const upsTimeLayout = "01/02/2006 3:04 PM"

// NewUPSAdapter creates a new UPSAdapter with the given site base URL.
func NewUPSAdapter(baseURL string, client *http.Client) *UPSAdapter {
	return &UPSAdapter{
		baseURL: baseURL,
		client:  client,
	}
}

// Carrier identifies this adapter as UPS.
func (a *UPSAdapter) Carrier() domain.Carrier {
	return domain.CarrierUPS
}

// CanHandle returns true for ups.com tracking URLs.
func (a *UPSAdapter) CanHandle(url string) bool {
	return strings.Contains(url, "ups.com")
}

// FetchRaw retrieves the rendered tracking page for the shipment.
func (a *UPSAdapter) FetchRaw(ctx context.Context, trackingURL string, opts domain.FetchOptions) (string, error) {
	barcode := firstMatch(upsBarcodeRx, trackingURL)
	if barcode == "" {
		return "", fmt.Errorf("%w: no barcode in %s", domain.ErrMalformedURL, trackingURL)
	}
	locale := upsLocales[opts.Language]
	if locale == "" {
		locale = "en_US"
	}
	pageURL := fmt.Sprintf("%s/track?loc=%s&tracknum=%s", a.baseURL, locale, barcode)
	return fetchBody(ctx, a.client, pageURL)
}

// Parse extracts the shipment record from the tracking page HTML.
func (a *UPSAdapter) Parse(trackingURL, raw string) (*domain.Package, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ups page: %w", err)
	}

	statusText := strings.TrimSpace(doc.Find("#stApp_txtPackageStatus").First().Text())
	events := upsEvents(doc)
	if statusText == "" && len(events) == 0 {
		return nil, fmt.Errorf("not a ups tracking page")
	}

	status := upsStatus(statusText)

	// The page's own tracking number is the source of truth; the number
	// embedded in the URL is only a fallback.
	barcode := strings.TrimSpace(doc.Find("#stApp_lblTrackingNumber").First().Text())
	if barcode == "" {
		barcode = firstMatch(upsBarcodeRx, trackingURL)
	}
	if barcode == "" {
		return nil, fmt.Errorf("no tracking number on page or in url")
	}

	pkg := &domain.Package{
		Barcode:   barcode,
		Carrier:   domain.CarrierUPS,
		Sender:    strings.TrimSpace(doc.Find("#stApp_lblShippedBy").First().Text()),
		Recipient: strings.TrimSpace(doc.Find("#stApp_lblShippedTo").First().Text()),
		Status:    status,
		Events:    events,
	}
	if status == domain.StatusDelivered && len(events) > 0 {
		// Scans are newest first; the delivery scan leads.
		t := events[0].Timestamp
		pkg.DeliveredAt = &t
	}
	return pkg, nil
}

// upsStatus maps the page's status banner onto the package lifecycle.
// Vocabulary the page is known to use; anything else is Unknown.
func upsStatus(text string) domain.PackageStatus {
	s := strings.ToUpper(text)
	switch {
	case strings.Contains(s, "OUT FOR DELIVERY"):
		return domain.StatusInTransit
	case strings.Contains(s, "DELIVERED"):
		return domain.StatusDelivered
	case strings.Contains(s, "IN TRANSIT"),
		strings.Contains(s, "ON THE WAY"),
		strings.Contains(s, "PICKED UP"),
		strings.Contains(s, "ARRIVED AT FACILITY"),
		strings.Contains(s, "LABEL CREATED"):
		return domain.StatusInTransit
	default:
		return domain.StatusUnknown
	}
}

// upsEvents reads the activity table rows. Rows with unparseable timestamps
// keep a zero time rather than dropping the scan text.
func upsEvents(doc *goquery.Document) []domain.Event {
	var events []domain.Event
	doc.Find("#stApp_activityTable tbody tr").Each(func(_ int, row *goquery.Selection) {
		when := strings.TrimSpace(row.Find("td").Eq(0).Text())
		what := strings.TrimSpace(row.Find("td").Eq(1).Text())
		if what == "" {
			return
		}
		timestamp, err := time.Parse(upsTimeLayout, when)
		if err != nil {
			timestamp = time.Time{}
		}
		events = append(events, domain.Event{
			Timestamp:   timestamp,
			Description: what,
		})
	})
	return events
}
