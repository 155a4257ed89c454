package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MorningDigest/internal/config"
	"MorningDigest/internal/infrastructure/llm"
	"MorningDigest/internal/logging"
)

func atomEntry(id, title string, published time.Time) string {
	return fmt.Sprintf(`<entry>
    <id>http://arxiv.org/abs/%sv1</id>
    <published>%s</published>
    <title>%s</title>
    <summary>Abstract of %s.</summary>
  </entry>`, id, published.Format(time.RFC3339), title, title)
}

func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	published := time.Now().UTC().Add(-2 * time.Hour)
	mux := http.NewServeMux()
	mux.HandleFunc("/arxiv", func(w http.ResponseWriter, r *http.Request) {
		entry := atomEntry("2501.00200", "Agents at work", published)
		if strings.Contains(r.URL.Query().Get("search_query"), "q-fin") {
			entry = atomEntry("2501.00001", "Momentum everywhere", published)
		}
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><feed xmlns="http://www.w3.org/2005/Atom"><title>q</title>%s</feed>`, entry)
	})
	mux.HandleFunc("/rxiv/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"messages":[{"status":"no posts found"}],"collection":[]}`)
	})
	mux.HandleFunc("/html/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		content := `{"papers":[{"id":"2501.00001","score":9,"discovery":"They found momentum pays.","action":"Test this.","can_implement":true,"tags":["momentum"]}]}`
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, content)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()

	t.Setenv("MORNING_DIGEST_CONFIG", "")
	t.Setenv("MORNING_DIGEST_OUTPUT", "")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Model.Provider = config.ProviderOpenAI
	cfg.Model.Endpoint = baseURL + "/chat"
	cfg.Model.APIKey = "test-key"
	cfg.Providers.ArxivAPIURL = baseURL + "/arxiv"
	cfg.Providers.RxivAPIURL = baseURL + "/rxiv"
	cfg.Providers.Pause = 0
	cfg.FullText.Pause = 0
	for i := range cfg.Categories {
		if cfg.Categories[i].FullText {
			cfg.Categories[i].FullTextURL = baseURL + "/html/{id}"
		}
	}
	cfg.Run.OutputPath = filepath.Join(t.TempDir(), "docs", "index.html")
	return cfg
}

func TestApplicationRunWritesDigest(t *testing.T) {
	server := fakeUpstream(t)
	cfg := testConfig(t, server.URL)

	application, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer application.Close()

	require.NoError(t, application.Run(context.Background()))

	html, err := os.ReadFile(cfg.Run.OutputPath)
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "Momentum everywhere")
	assert.Contains(t, out, "They found momentum pays.")
	assert.Contains(t, out, "9/10")
	assert.Contains(t, out, "Agents at work")
}

func TestApplicationFailsFastWithoutCredential(t *testing.T) {
	server := fakeUpstream(t)
	cfg := testConfig(t, server.URL)
	cfg.Model.APIKey = ""

	_, err := New(context.Background(), cfg, logging.Discard())
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}
