package tallysync

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(endpoint string) *tallyClient {
	return &tallyClient{
		endpoint:    endpoint,
		companyName: "Acme Traders",
		maxRetries:  3,
		timeouts:    []time.Duration{200 * time.Millisecond},
		backoffBase: time.Millisecond,
		backoffCap:  5 * time.Millisecond,
		http:        &http.Client{},
		now:         func() time.Time { return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestFetch_RetriesServerErrorUntilExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.fetch(context.Background(), EntityLedger, DateRange{})
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, TransportServerError, terr.Kind)
	assert.Equal(t, 4, terr.Attempts)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestFetch_NotFoundFailsImmediately(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.fetch(context.Background(), EntityLedger, DateRange{})
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, TransportNotFound, terr.Kind)
	assert.False(t, terr.Retryable())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_SucceedsAfterTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `<ENVELOPE><BODY><DATA><COLLECTION><LEDGER><NAME>Cash</NAME></LEDGER></COLLECTION></DATA></BODY></ENVELOPE>`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	doc, err := c.fetch(context.Background(), EntityLedger, DateRange{})
	require.NoError(t, err)
	require.NotNil(t, LocateCollection(doc))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_LineErrorIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<ENVELOPE><BODY><DATA><LINEERROR>Could not find Collection</LINEERROR></DATA></BODY></ENVELOPE>`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.fetch(context.Background(), EntityVoucher, DateRange{})
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, TransportProtocolError, terr.Kind)
	assert.False(t, terr.Retryable())
	assert.Contains(t, err.Error(), "Could not find Collection")
}

func TestFetch_MalformedXMLIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `this is not xml`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.fetch(context.Background(), EntityGroup, DateRange{})
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, TransportProtocolError, terr.Kind)
}

func TestFetch_VoucherRequestCarriesDateRange(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		_, _ = io.WriteString(w, `<ENVELOPE><BODY><DATA><COLLECTION></COLLECTION></DATA></BODY></ENVELOPE>`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.fetch(context.Background(), EntityVoucher, DateRange{From: "20240101", To: "20240331"})
	require.NoError(t, err)

	assert.Contains(t, body, "<SVFROMDATE>20240101</SVFROMDATE>")
	assert.Contains(t, body, "<SVTODATE>20240331</SVTODATE>")
	assert.Contains(t, body, "<SVCURRENTCOMPANY>Acme Traders</SVCURRENTCOMPANY>")
	assert.Contains(t, body, "<TALLYREQUEST>Export</TALLYREQUEST>")
	assert.Contains(t, body, "<TYPE>Voucher</TYPE>")
}

func TestFetch_ConnectionRefusedIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	c := testClient(endpoint)
	c.maxRetries = 1
	_, err := c.fetch(context.Background(), EntityLedger, DateRange{})
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, TransportConnectionRefused, terr.Kind)
	assert.True(t, terr.Retryable())
	assert.Equal(t, 2, terr.Attempts)
}

func TestTimeoutSchedule_ReusesLastEntry(t *testing.T) {
	c := testClient("http://example.invalid")
	c.timeouts = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	assert.Equal(t, time.Second, c.timeoutFor(0))
	assert.Equal(t, 4*time.Second, c.timeoutFor(2))
	assert.Equal(t, 4*time.Second, c.timeoutFor(7))
}

func TestBuildExportRequest_UnknownEntity(t *testing.T) {
	_, err := buildExportRequest(EntityType("nonsense"), "", DateRange{}, time.Now())
	require.Error(t, err)
}

func TestBuildExportRequest_DefaultsVoucherRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	req, err := buildExportRequest(EntityVoucher, "", DateRange{}, now)
	require.NoError(t, err)
	assert.Contains(t, req, "<SVFROMDATE>19900101</SVFROMDATE>")
	assert.Contains(t, req, "<SVTODATE>20240615</SVTODATE>")
}

func TestBuildExportRequest_EscapesCompanyName(t *testing.T) {
	req, err := buildExportRequest(EntityLedger, `A & B "Traders" <P> Ltd`, DateRange{}, time.Now())
	require.NoError(t, err)
	assert.Contains(t, req, "A &amp; B")
	assert.NotContains(t, req, `<P> Ltd`)
}
