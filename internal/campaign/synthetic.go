package campaign

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campgen/campgen/internal/catalog"
)

// Defaults used by the synthetic generator and by reconciliation when the
// model omits a field.
const (
	DefaultMessage  = "Discover our latest products with an exclusive discount. Limited time offer!"
	DefaultSubject  = "Special Offer Just for You!"
	DefaultCurrency = "USD"
	DefaultTimezone = "UTC"
	DefaultTotal    = 10000

	defaultWindow = 30 * 24 * time.Hour
)

// DefaultAudience is the targeting block used when no model output is available.
func DefaultAudience() Audience {
	return Audience{
		Segments: []string{"high-value-customers", "new-subscribers"},
		Demographics: map[string]any{
			"age":       "25-45",
			"location":  "US, CA, UK",
			"interests": []string{"technology", "lifestyle"},
		},
		Behaviors: map[string]any{
			"purchaseHistory": "high-value",
			"engagement":      "active",
			"frequency":       "weekly",
		},
	}
}

// Synthesize builds a complete, schema-valid campaign with no external
// dependency. It is the unconditional safety net for the generation pipeline:
// everything except the id and timestamps is deterministic in its inputs.
func Synthesize(prompt string, sources []catalog.DataSource, channels []catalog.Channel) Campaign {
	now := time.Now().UTC()
	end := now.Add(defaultWindow)
	id := uuid.NewString()

	perChannel := make(map[string]float64, len(channels))
	if len(channels) > 0 {
		split := float64(DefaultTotal) / float64(len(channels))
		for _, ch := range channels {
			perChannel[ch.ID] = split
		}
	}

	return Campaign{
		ID:          id,
		Name:        "Campaign " + strings.ToUpper(id[:6]),
		Description: prompt,
		Channels:    channels,
		DataSources: sources,
		Audience:    DefaultAudience(),
		Timing: Timing{
			StartDate: now,
			EndDate:   &end,
			Frequency: FreqWeekly,
			Timezone:  DefaultTimezone,
		},
		Content: Content{
			Subject: DefaultSubject,
			Message: DefaultMessage,
			CTA: &CTA{
				Text: "Shop Now",
				URL:  "https://example.com/shop",
			},
		},
		Budget: &Budget{
			Total:      DefaultTotal,
			Currency:   DefaultCurrency,
			PerChannel: perChannel,
		},
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
