package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MorningDigest/internal/scanner"
)

func rxivRecordJSON(doi, date, category string) string {
	return fmt.Sprintf(`{"doi":%q,"title":"Title %s","abstract":"Abstract\n%s","date":%q,"version":"1","category":%q}`,
		doi, doi, doi, date, category)
}

func rxivRequest() scanner.Request {
	return scanner.Request{
		SourceName: "medrxiv",
		Category:   "longevity",
		Topics:     []string{"Geriatric Medicine", "epidemiology"},
		Since:      time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
		Until:      time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
	}
}

func TestRxivScannerPaginatesUntilTotal(t *testing.T) {
	t.Parallel()

	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch {
		case strings.HasSuffix(r.URL.Path, "/0"):
			fmt.Fprintf(w, `{"messages":[{"status":"ok","total":"3"}],"collection":[%s,%s]}`,
				rxivRecordJSON("10.1101/a", "2025-01-03", "geriatric_medicine"),
				rxivRecordJSON("10.1101/skip", "2025-01-03", "oncology"))
		case strings.HasSuffix(r.URL.Path, "/2"):
			fmt.Fprintf(w, `{"messages":[{"status":"ok","total":3}],"collection":[%s]}`,
				rxivRecordJSON("10.1101/b", "2025-01-05", "Epidemiology"))
		default:
			t.Errorf("unexpected page %s", r.URL.Path)
		}
	}))
	defer server.Close()

	sc := NewRxivScanner("medrxiv", server.Client(), RxivOptions{BaseURL: server.URL}, nil)
	papers, err := sc.Scan(context.Background(), rxivRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"/medrxiv/2025-01-02/2025-01-06/0", "/medrxiv/2025-01-02/2025-01-06/2"}, paths)
	require.Len(t, papers, 2)
	assert.Equal(t, "10.1101/b", papers[0].ID, "newest first")
	assert.Equal(t, "2025-01-05T00:00:00Z", papers[0].Published)
	assert.Equal(t, "https://www.medrxiv.org/content/10.1101/bv1", papers[0].URL)
	assert.Equal(t, "Abstract 10.1101/b", papers[0].Abstract)
	assert.Equal(t, "longevity", papers[0].Category)
}

func TestRxivScannerPageFailureIsSoft(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/0") {
			fmt.Fprintf(w, `{"messages":[{"status":"ok","total":"500"}],"collection":[%s]}`,
				rxivRecordJSON("10.1101/a", "2025-01-03", "epidemiology"))
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	sc := NewRxivScanner("medrxiv", server.Client(), RxivOptions{BaseURL: server.URL}, nil)
	papers, err := sc.Scan(context.Background(), rxivRequest())
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "10.1101/a", papers[0].ID)
}

func TestRxivScannerNoPostsEndsListing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"messages":[{"status":"no posts found"}],"collection":[]}`))
	}))
	defer server.Close()

	sc := NewRxivScanner("biorxiv", server.Client(), RxivOptions{BaseURL: server.URL}, nil)
	papers, err := sc.Scan(context.Background(), rxivRequest())
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.Equal(t, "biorxiv", sc.Name())
}

func TestRxivScannerRespectsPageCapAndMaxResults(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"messages":[{"status":"ok","total":"1000"}],"collection":[%s,%s]}`,
			rxivRecordJSON(fmt.Sprintf("10.1101/p%da", calls), "2025-01-03", "epidemiology"),
			rxivRecordJSON(fmt.Sprintf("10.1101/p%db", calls), "2025-01-04", "epidemiology"))
	}))
	defer server.Close()

	sc := NewRxivScanner("medrxiv", server.Client(), RxivOptions{BaseURL: server.URL, PageCap: 2}, nil)
	req := rxivRequest()
	req.MaxResults = 3
	papers, err := sc.Scan(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Len(t, papers, 3)
}

func TestRxivScannerRequiresDateRange(t *testing.T) {
	t.Parallel()

	sc := NewRxivScanner("biorxiv", nil, RxivOptions{}, nil)
	_, err := sc.Scan(context.Background(), scanner.Request{SourceName: "biorxiv"})
	assert.Error(t, err)
}
