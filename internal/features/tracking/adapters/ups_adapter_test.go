package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"packtrack/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upsDeliveredPage = `
<html>
<body>
    <div id="stApp_txtPackageStatus">Delivered On Tuesday, August 25</div>
    <span id="stApp_lblTrackingNumber">1Z999AA10123456784</span>
    <span id="stApp_lblShippedBy">Apple Inc.</span>
    <span id="stApp_lblShippedTo">AMSTERDAM, NL</span>
    <table id="stApp_activityTable">
        <tbody>
            <tr><td>08/25/2026 2:41 PM</td><td>Delivered</td></tr>
            <tr><td>08/25/2026 9:10 AM</td><td>Out For Delivery Today</td></tr>
            <tr><td>08/24/2026 11:55 PM</td><td>Arrived at Facility</td></tr>
        </tbody>
    </table>
</body>
</html>`

// TestUPSAdapter_FetchRaw verifies the tracking page URL composition.
func TestUPSAdapter_FetchRaw(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(upsDeliveredPage))
	}))
	defer ts.Close()

	adapter := NewUPSAdapter(ts.URL, ts.Client())
	_, err := adapter.FetchRaw(context.Background(),
		"https://www.ups.com/track?tracknum=1Z999AA10123456784",
		domain.FetchOptions{Language: "nl"})

	require.NoError(t, err)
	assert.Equal(t, "loc=nl_NL&tracknum=1Z999AA10123456784", gotQuery)
}

// TestUPSAdapter_FetchRaw_MalformedURL verifies the malformed URL error.
func TestUPSAdapter_FetchRaw_MalformedURL(t *testing.T) {
	adapter := NewUPSAdapter("https://www.ups.com", http.DefaultClient)

	_, err := adapter.FetchRaw(context.Background(), "https://www.ups.com/track", domain.FetchOptions{})

	assert.ErrorIs(t, err, domain.ErrMalformedURL)
}

// TestUPSAdapter_Parse_Delivered verifies scraping of a delivered shipment
// page, with the delivery moment taken from the newest scan.
func TestUPSAdapter_Parse_Delivered(t *testing.T) {
	adapter := NewUPSAdapter("https://www.ups.com", http.DefaultClient)
	pkg, err := adapter.Parse("https://www.ups.com/track?tracknum=1Z999AA10123456784", upsDeliveredPage)

	require.NoError(t, err)
	assert.Equal(t, "1Z999AA10123456784", pkg.Barcode)
	assert.Equal(t, domain.CarrierUPS, pkg.Carrier)
	assert.Equal(t, "Apple Inc.", pkg.Sender)
	assert.Equal(t, "AMSTERDAM, NL", pkg.Recipient)
	assert.Equal(t, domain.StatusDelivered, pkg.Status)
	require.Len(t, pkg.Events, 3)
	assert.Equal(t, "Delivered", pkg.Events[0].Description)

	expected, _ := time.Parse(upsTimeLayout, "08/25/2026 2:41 PM")
	require.NotNil(t, pkg.DeliveredAt)
	assert.Equal(t, expected, *pkg.DeliveredAt)
}

// TestUPSAdapter_Parse_NotTrackingPage verifies the error for a page without
// any tracking content.
func TestUPSAdapter_Parse_NotTrackingPage(t *testing.T) {
	adapter := NewUPSAdapter("https://www.ups.com", http.DefaultClient)

	_, err := adapter.Parse("https://www.ups.com/track?tracknum=X", `<html><body><h1>Maintenance</h1></body></html>`)

	assert.Error(t, err)
}

// TestUPSAdapter_StatusMapping verifies the banner vocabulary mapping.
func TestUPSAdapter_StatusMapping(t *testing.T) {
	assert.Equal(t, domain.StatusDelivered, upsStatus("Delivered On Tuesday"))
	// Out for delivery mentions delivery but is not a completed delivery.
	assert.Equal(t, domain.StatusInTransit, upsStatus("Out for Delivery Today by 9:00 PM"))
	assert.Equal(t, domain.StatusInTransit, upsStatus("In Transit"))
	assert.Equal(t, domain.StatusInTransit, upsStatus("On the Way"))
	assert.Equal(t, domain.StatusInTransit, upsStatus("Label Created"))
	assert.Equal(t, domain.StatusUnknown, upsStatus("Something Unexpected"))
}
