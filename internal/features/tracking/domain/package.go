package domain

import "time"

// Carrier identifies a courier whose tracking endpoint format is understood.
type Carrier string

const (
	// CarrierPostNL is the Dutch national postal service.
	CarrierPostNL Carrier = "PostNL"
	// CarrierDHL covers both dhl.com and my.dhlecommerce.nl tracking pages.
	CarrierDHL Carrier = "DHL"
	// CarrierGLS is General Logistics Systems (gls-info.nl).
	CarrierGLS Carrier = "GLS"
	// CarrierUPS is United Parcel Service.
	CarrierUPS Carrier = "UPS"
)

// PackageStatus represents the lifecycle state of a shipment.
type PackageStatus string

const (
	// StatusDelivered indicates the shipment reached its recipient.
	StatusDelivered PackageStatus = "DELIVERED"
	// StatusInTransit indicates the shipment is between acceptance and delivery.
	StatusInTransit PackageStatus = "IN_TRANSIT"
	// StatusUnknown indicates the carrier vocabulary could not be mapped.
	StatusUnknown PackageStatus = "UNKNOWN"
)

// Event is a single scan in the shipment's history, in carrier order.
type Event struct {
	// Timestamp is when the carrier recorded the event.
	Timestamp time.Time `json:"timestamp"`
	// Description is the carrier's text for the event.
	Description string `json:"description"`
}

// TimeWindow is a delivery window announced by the carrier.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Package is the uniform shipment record produced by a carrier parser.
// Empty Sender/Recipient means the carrier did not expose the party.
type Package struct {
	// Barcode is the carrier-assigned tracking code.
	Barcode   string        `json:"barcode"`
	Carrier   Carrier       `json:"carrier"`
	Sender    string        `json:"sender,omitempty"`
	Recipient string        `json:"recipient,omitempty"`
	Status    PackageStatus `json:"status"`
	// Events are chronological as delivered by the carrier, not re-sorted.
	Events []Event `json:"events"`
	// Eta is the expected delivery moment, when announced.
	Eta         *time.Time  `json:"eta,omitempty"`
	EtaWindow   *TimeWindow `json:"eta_window,omitempty"`
	DeliveredAt *time.Time  `json:"delivered_at,omitempty"`
}

// FetchOptions carries the user hints passed through to carrier requests.
// Carriers that do not support a hint ignore it.
type FetchOptions struct {
	// Language is an ISO 639 code, e.g. "en" or "nl".
	Language string
	// Postcode is the recipient postcode fallback for carriers that
	// require one and for URLs that do not embed it.
	Postcode string
}

// CacheEntry is the persisted result of one successful fetch for a URL.
// The raw payload is stored so it can be re-parsed on later runs.
type CacheEntry struct {
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
	Payload   string    `json:"payload"`
	// Delivered marks terminal shipments, which stay usable regardless of age.
	Delivered bool `json:"delivered"`
}

// Age returns how long ago the entry was fetched.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}
