package config

import "time"

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Run:     RunConfig{HoursBack: 96, OutputPath: "docs/index.html"},
		Providers: ProviderConfig{
			ArxivAPIURL:    "https://export.arxiv.org/api/query",
			RxivAPIURL:     "https://api.biorxiv.org/details",
			UserAgent:      "MorningDigest/1.0",
			RequestTimeout: 30 * time.Second,
			Pause:          3 * time.Second,
			RxivPageCap:    20,
		},
		Model: ModelConfig{
			Provider:        ProviderGemini,
			Name:            "gemini-2.5-flash-lite",
			Endpoint:        "https://api.openai.com/v1/chat/completions",
			Temperature:     0.1,
			MaxOutputTokens: 65536,
			Timeout:         5 * time.Minute,
		},
		FullText: FullTextConfig{
			Timeout:         15 * time.Second,
			Pause:           time.Second,
			MinBytes:        5000,
			MinTextChars:    2000,
			IntroChars:      1500,
			ConclusionChars: 2000,
			TotalChars:      3500,
			AbstractChars:   700,
			Markers: []string{
				"conclusion",
				"concluding remarks",
				"discussion",
				"in this paper we",
				"our results",
				"results show",
				"we find that",
				"we found that",
				"empirical results",
				"in summary",
			},
		},
		Render: RenderConfig{
			TopPickScore: 7,
			CardScore:    5,
			MaxScore:     10,
			Locale: LocaleConfig{
				Lang:             "en",
				Title:            "Morning Digest",
				TopPicks:         "Top Picks · Worth your time",
				TopPicksCounter:  "top picks",
				NoTopPicks:       "No high-scoring papers today.",
				NoPapers:         "No papers in this section.",
				AllPapers:        "All papers",
				Discovery:        "Discovery",
				Insight:          "What it means",
				Action:           "What to do",
				Implementable:    "Implementable in RealTest",
				NotImplementable: "Not directly implementable",
				Generated:        "Generated",
				Footer:           "Auto-generated · arXiv API · bioRxiv/medRxiv API",
			},
		},
		Categories: []CategoryConfig{
			{
				Name:          "quant",
				Label:         "Quantitative Finance",
				Badge:         "QUANT",
				Color:         "#1565c0",
				Icon:          "📊",
				Mode:          ModeAnalyze,
				MaxPapers:     40,
				ContentBudget: 700,
				FullText:      true,
				FullTextURL:   "https://arxiv.org/html/{id}",
				Sources: []SourceConfig{
					{
						Name:       "arxiv-quant",
						Scanner:    "arxiv",
						Topics:     []string{"q-fin.CP", "q-fin.PM", "q-fin.ST", "q-fin.RM", "q-fin.TR"},
						MaxResults: 80,
					},
				},
			},
			{
				Name:          "longevity",
				Label:         "Longevity & Health",
				Badge:         "HEALTH",
				Color:         "#2e7d32",
				Icon:          "🧬",
				Mode:          ModeAnalyze,
				MaxPapers:     15,
				ContentBudget: 500,
				Relevance: &RelevanceConfig{
					Strong: []string{
						"longevity", "lifespan", "healthspan", "aging", "ageing",
						"senescence", "senolytic", "rapamycin", "mtor", "metformin",
						"caloric restriction", "nad+", "epigenetic clock", "mortality",
					},
					Weak:     []string{"exercise", "sleep", "diet", "inflammation", "mitochondria"},
					MinScore: 3,
				},
				Sources: []SourceConfig{
					{
						Name:       "medrxiv",
						Scanner:    "medrxiv",
						Topics:     []string{"geriatric medicine", "endocrinology", "nutrition", "epidemiology", "sports medicine"},
						MaxResults: 300,
						ScoreBonus: 2,
					},
					{
						Name:       "biorxiv",
						Scanner:    "biorxiv",
						Topics:     []string{"cell biology", "genetics", "molecular biology", "physiology", "systems biology"},
						MaxResults: 300,
					},
				},
			},
			{
				Name:          "ai",
				Label:         "AI & Automation",
				Badge:         "AI",
				Color:         "#6a1b9a",
				Icon:          "🤖",
				Mode:          ModeLinks,
				MaxPapers:     40,
				ContentBudget: 500,
				Sources: []SourceConfig{
					{
						Name:       "arxiv-ai",
						Scanner:    "arxiv",
						Topics:     []string{"cs.AI", "cs.LG"},
						MaxResults: 100,
					},
				},
			},
		},
	}
}
