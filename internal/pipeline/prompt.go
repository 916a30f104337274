package pipeline

import (
	"fmt"
	"strings"

	"github.com/campgen/campgen/internal/catalog"
)

// PromptBuilder assembles the campaign-generation instruction from the user's
// request and the connected entity names. Pure string construction; the same
// inputs always produce the same prompt.
type PromptBuilder struct {
	UserPrompt  string
	DataSources []catalog.DataSource
	Channels    []catalog.Channel
}

// Build constructs the full system prompt.
func (b *PromptBuilder) Build() string {
	var sb strings.Builder

	b.writeRole(&sb)
	b.writeContext(&sb)
	b.writeSchema(&sb)
	b.writeGuidelines(&sb)

	return sb.String()
}

func (b *PromptBuilder) writeRole(sb *strings.Builder) {
	sb.WriteString("You are an expert marketing AI that creates highly targeted, data-driven marketing campaigns. ")
	sb.WriteString("Your role is to generate comprehensive campaign JSON that can be executed across multiple marketing channels.\n\n")
}

func (b *PromptBuilder) writeContext(sb *strings.Builder) {
	sb.WriteString("CONTEXT:\n")
	fmt.Fprintf(sb, "- User Request: %q\n", b.UserPrompt)
	fmt.Fprintf(sb, "- Available Data Sources: %s\n", joinNames(sourceNames(b.DataSources)))
	fmt.Fprintf(sb, "- Available Channels: %s\n\n", joinNames(channelNames(b.Channels)))
}

func (b *PromptBuilder) writeSchema(sb *strings.Builder) {
	sb.WriteString("TASK:\n")
	sb.WriteString("Generate a detailed marketing campaign JSON that follows this EXACT structure. ")
	sb.WriteString("Make it highly relevant to the user's request and optimize for the available channels and data sources.\n\n")
	sb.WriteString("REQUIRED JSON STRUCTURE:\n")
	sb.WriteString(`{
  "id": "campaign_[random_id]",
  "name": "Compelling Campaign Name",
  "description": "Detailed campaign description explaining the strategy",
  "channels": [{"id": "channel_id", "name": "Channel Name", "type": "channel_type", "status": "active"}],
  "dataSources": [{"id": "source_id", "name": "Source Name", "type": "source_type", "status": "connected"}],
  "audience": {
    "segments": ["specific-segment1", "specific-segment2"],
    "demographics": {
      "age": "target-age-range",
      "location": "geographic-targets",
      "interests": ["relevant-interests"],
      "income": "income-bracket",
      "education": "education-level"
    },
    "behaviors": {
      "purchaseHistory": "purchase-patterns",
      "engagement": "engagement-level",
      "frequency": "interaction-frequency",
      "preferredChannels": ["channel-preferences"],
      "lifecycleStage": "customer-stage"
    }
  },
  "timing": {
    "startDate": "2024-01-01T00:00:00Z",
    "endDate": "2024-01-31T23:59:59Z",
    "frequency": "once|daily|weekly|monthly",
    "timezone": "UTC",
    "optimalTimes": ["best-send-times"],
    "seasonality": "seasonal-factors"
  },
  "content": {
    "subject": "Compelling Email Subject",
    "message": "Main campaign message optimized for engagement",
    "headline": "Attention-grabbing headline",
    "subheadline": "Supporting subheadline",
    "media": ["relevant-media-files"],
    "cta": {
      "text": "Clear Call-to-Action",
      "url": "https://landing-page.com",
      "urgency": "urgency-level"
    },
    "personalization": {
      "dynamicContent": "personalization-elements",
      "variables": ["name", "location", "preferences"]
    }
  },
  "budget": {
    "total": 10000,
    "currency": "USD",
    "perChannel": {"email": 5000, "sms": 3000, "push": 2000},
    "allocationStrategy": "budget-allocation-rationale"
  },
  "objectives": {
    "primary": "main-campaign-goal",
    "secondary": ["secondary-goals"],
    "kpis": ["key-performance-indicators"],
    "successMetrics": "how-to-measure-success"
  },
  "status": "draft",
  "createdAt": "2024-01-01T00:00:00Z",
  "updatedAt": "2024-01-01T00:00:00Z"
}
`)
	sb.WriteString("\nRequired fields: name, description, channels, dataSources, audience, timing, content.message, status.\n")
	sb.WriteString("All other fields are optional; omit them rather than inventing placeholder values.\n\n")
}

func (b *PromptBuilder) writeGuidelines(sb *strings.Builder) {
	sb.WriteString("GUIDELINES:\n")
	sb.WriteString("1. Make the campaign highly specific to the user's request\n")
	sb.WriteString("2. Use the available data sources to inform audience targeting\n")
	sb.WriteString("3. Optimize content for each available channel\n")
	sb.WriteString("4. Include realistic budget allocation\n")
	sb.WriteString("5. Add compelling, actionable content\n")
	sb.WriteString("6. Consider timing and seasonality\n")
	sb.WriteString("7. Make it data-driven and measurable\n")
	sb.WriteString("8. Only reference channels and data sources listed in CONTEXT\n\n")
	sb.WriteString("Return ONLY the JSON object, no additional text.")
}

func sourceNames(sources []catalog.DataSource) []string {
	names := make([]string, len(sources))
	for i, ds := range sources {
		names[i] = ds.Name
	}
	return names
}

func channelNames(channels []catalog.Channel) []string {
	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = ch.Name
	}
	return names
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
