package campaign

import (
	"fmt"
	"time"

	"github.com/campgen/campgen/internal/catalog"
)

// Status is the campaign lifecycle state. The pipeline only ever creates
// campaigns in StatusDraft; the other states belong to downstream execution.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Frequency is how often campaign messages go out.
type Frequency string

const (
	FreqOnce    Frequency = "once"
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
)

// ValidFrequency reports whether f is one of the known frequency values.
func ValidFrequency(f Frequency) bool {
	switch f {
	case FreqOnce, FreqDaily, FreqWeekly, FreqMonthly:
		return true
	}
	return false
}

// Audience describes who the campaign targets.
type Audience struct {
	Segments     []string       `json:"segments"`
	Demographics map[string]any `json:"demographics"`
	Behaviors    map[string]any `json:"behaviors"`
}

// Timing describes when and how often the campaign runs.
type Timing struct {
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Frequency    Frequency  `json:"frequency"`
	Timezone     string     `json:"timezone"`
	OptimalTimes []string   `json:"optimalTimes,omitempty"`
	Seasonality  string     `json:"seasonality,omitempty"`
}

// CTA is a call-to-action attached to campaign content.
type CTA struct {
	Text    string `json:"text"`
	URL     string `json:"url"`
	Urgency string `json:"urgency,omitempty"`
}

// Personalization describes dynamic content substitution.
type Personalization struct {
	DynamicContent string   `json:"dynamicContent,omitempty"`
	Variables      []string `json:"variables,omitempty"`
}

// Content holds the campaign creative. Message is the only required field.
type Content struct {
	Subject         string           `json:"subject,omitempty"`
	Message         string           `json:"message"`
	Headline        string           `json:"headline,omitempty"`
	Subheadline     string           `json:"subheadline,omitempty"`
	Media           []string         `json:"media,omitempty"`
	CTA             *CTA             `json:"cta,omitempty"`
	Personalization *Personalization `json:"personalization,omitempty"`
}

// Budget allocates spend across channels. PerChannel is keyed by channel id
// and carries one entry per channel referenced on the campaign.
type Budget struct {
	Total              float64            `json:"total"`
	Currency           string             `json:"currency"`
	PerChannel         map[string]float64 `json:"perChannel"`
	AllocationStrategy string             `json:"allocationStrategy,omitempty"`
}

// Objectives captures what the campaign is trying to achieve.
type Objectives struct {
	Primary        string   `json:"primary"`
	Secondary      []string `json:"secondary,omitempty"`
	KPIs           []string `json:"kpis,omitempty"`
	SuccessMetrics string   `json:"successMetrics,omitempty"`
}

// Campaign is the structured output of the generation pipeline.
type Campaign struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Channels    []catalog.Channel    `json:"channels"`
	DataSources []catalog.DataSource `json:"dataSources"`
	Audience    Audience             `json:"audience"`
	Timing      Timing               `json:"timing"`
	Content     Content              `json:"content"`
	Budget      *Budget              `json:"budget,omitempty"`
	Objectives  *Objectives          `json:"objectives,omitempty"`
	Status      Status               `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// Validate checks the structural invariants the pipeline guarantees: channels
// and data sources are subsets of the supplied connected sets, content has a
// message, and the per-channel budget covers exactly the referenced channels.
func (c *Campaign) Validate(sources []catalog.DataSource, channels []catalog.Channel) error {
	if c.ID == "" {
		return fmt.Errorf("campaign has no id")
	}
	if c.Content.Message == "" {
		return fmt.Errorf("campaign %s has no content message", c.ID)
	}
	chanIDs := make(map[string]bool, len(channels))
	for _, ch := range channels {
		chanIDs[ch.ID] = true
	}
	for _, ch := range c.Channels {
		if !chanIDs[ch.ID] {
			return fmt.Errorf("campaign %s references unknown channel %s", c.ID, ch.ID)
		}
	}
	srcIDs := make(map[string]bool, len(sources))
	for _, ds := range sources {
		srcIDs[ds.ID] = true
	}
	for _, ds := range c.DataSources {
		if !srcIDs[ds.ID] {
			return fmt.Errorf("campaign %s references unknown data source %s", c.ID, ds.ID)
		}
	}
	if c.Budget != nil {
		if len(c.Budget.PerChannel) != len(c.Channels) {
			return fmt.Errorf("campaign %s budget covers %d channels, campaign has %d",
				c.ID, len(c.Budget.PerChannel), len(c.Channels))
		}
		for _, ch := range c.Channels {
			if _, ok := c.Budget.PerChannel[ch.ID]; !ok {
				return fmt.Errorf("campaign %s budget missing allocation for channel %s", c.ID, ch.ID)
			}
		}
	}
	return nil
}
