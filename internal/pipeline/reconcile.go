package pipeline

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/campgen/campgen/internal/campaign"
	"github.com/campgen/campgen/internal/catalog"
)

// FallbackMessage replaces content.message when the model omits it.
const FallbackMessage = "Campaign message"

// Reconcile maps raw model output onto the campaign schema. The response is
// untrusted free text: it is parsed into a loose map and projected field by
// field, defaulting anything missing or malformed. Channel and data-source
// references are restricted to the caller's connected sets; nothing is ever
// fabricated. The second return is false when the text could not be parsed at
// all and the synthetic generator supplied the campaign.
func Reconcile(raw, prompt string, sources []catalog.DataSource, channels []catalog.Channel) (campaign.Campaign, bool) {
	obj, ok := parseLoose(raw)
	if !ok {
		return campaign.Synthesize(prompt, sources, channels), false
	}

	now := time.Now().UTC()

	c := campaign.Campaign{
		ID:          stringOr(obj, "id", ""),
		Name:        stringOr(obj, "name", "AI Generated Campaign"),
		Description: stringOr(obj, "description", prompt),
		Channels:    reconcileChannels(obj["channels"], channels),
		DataSources: reconcileSources(obj["dataSources"], sources),
		Audience:    reconcileAudience(asMap(obj["audience"])),
		Timing:      reconcileTiming(asMap(obj["timing"]), now),
		Content:     reconcileContent(asMap(obj["content"])),
		Objectives:  reconcileObjectives(asMap(obj["objectives"])),
		Status:      campaign.StatusDraft, // lifecycle state is never taken from the model
		CreatedAt:   timeOr(obj, "createdAt", now),
		UpdatedAt:   timeOr(obj, "updatedAt", now),
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Budget = reconcileBudget(asMap(obj["budget"]), c.Channels)

	return c, true
}

// parseLoose parses raw into a JSON object, retrying on the first balanced
// {...} span when the full text is not valid JSON. A bare JSON null decodes
// without error into a nil map and counts as unparsed.
func parseLoose(raw string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil && obj != nil {
		return obj, true
	}
	span, found := extractObject(raw)
	if !found {
		return nil, false
	}
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// reconcileChannels keeps the connected channels whose type tag appears in the
// parsed entries. Entries naming types the caller never connected are dropped.
func reconcileChannels(parsed any, connected []catalog.Channel) []catalog.Channel {
	types := entityTypes(parsed)
	kept := []catalog.Channel{}
	for _, ch := range connected {
		if types[string(ch.Type)] {
			kept = append(kept, ch)
		}
	}
	return kept
}

func reconcileSources(parsed any, connected []catalog.DataSource) []catalog.DataSource {
	types := entityTypes(parsed)
	kept := []catalog.DataSource{}
	for _, ds := range connected {
		if types[string(ds.Type)] {
			kept = append(kept, ds)
		}
	}
	return kept
}

// entityTypes collects the "type" tags from a parsed entity array.
func entityTypes(parsed any) map[string]bool {
	types := make(map[string]bool)
	list, ok := parsed.([]any)
	if !ok {
		return types
	}
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			if t := stringOr(m, "type", ""); t != "" {
				types[t] = true
			}
		}
	}
	return types
}

// generalAudience is the targeting block substituted when the model omits
// audience entirely. Not the synthetic generator's audience; that one stands
// in for a whole campaign.
func generalAudience() campaign.Audience {
	return campaign.Audience{
		Segments:     []string{"general-audience"},
		Demographics: map[string]any{"age": "25-45", "location": "US", "interests": []string{"general"}},
		Behaviors:    map[string]any{"engagement": "active", "frequency": "weekly"},
	}
}

func reconcileAudience(m map[string]any) campaign.Audience {
	if m == nil {
		return generalAudience()
	}
	a := campaign.Audience{
		Segments:     stringSlice(m["segments"]),
		Demographics: asMap(m["demographics"]),
		Behaviors:    asMap(m["behaviors"]),
	}
	if len(a.Segments) == 0 {
		a.Segments = []string{"general-audience"}
	}
	if a.Demographics == nil {
		a.Demographics = map[string]any{}
	}
	if a.Behaviors == nil {
		a.Behaviors = map[string]any{}
	}
	return a
}

func reconcileTiming(m map[string]any, now time.Time) campaign.Timing {
	t := campaign.Timing{
		StartDate: now,
		Frequency: campaign.FreqWeekly,
		Timezone:  campaign.DefaultTimezone,
	}
	if m == nil {
		return t
	}
	if start, ok := parseTime(stringOr(m, "startDate", "")); ok {
		t.StartDate = start
	}
	// endDate stays absent when unparsable
	if end, ok := parseTime(stringOr(m, "endDate", "")); ok {
		t.EndDate = &end
	}
	if f := campaign.Frequency(stringOr(m, "frequency", "")); campaign.ValidFrequency(f) {
		t.Frequency = f
	}
	if tz := stringOr(m, "timezone", ""); tz != "" {
		t.Timezone = tz
	}
	t.OptimalTimes = stringSlice(m["optimalTimes"])
	t.Seasonality = stringOr(m, "seasonality", "")
	return t
}

func reconcileContent(m map[string]any) campaign.Content {
	c := campaign.Content{Message: FallbackMessage}
	if m == nil {
		return c
	}
	if msg := stringOr(m, "message", ""); msg != "" {
		c.Message = msg
	}
	c.Subject = stringOr(m, "subject", "")
	c.Headline = stringOr(m, "headline", "")
	c.Subheadline = stringOr(m, "subheadline", "")
	c.Media = stringSlice(m["media"])

	if cta := asMap(m["cta"]); cta != nil {
		text := stringOr(cta, "text", "")
		url := stringOr(cta, "url", "")
		if text != "" || url != "" {
			c.CTA = &campaign.CTA{
				Text:    text,
				URL:     url,
				Urgency: stringOr(cta, "urgency", ""),
			}
		}
	}
	if p := asMap(m["personalization"]); p != nil {
		c.Personalization = &campaign.Personalization{
			DynamicContent: stringOr(p, "dynamicContent", ""),
			Variables:      stringSlice(p["variables"]),
		}
	}
	return c
}

// reconcileBudget keeps the model's total and currency but re-keys perChannel
// onto the reconciled channels: allocations are matched by channel id or type
// tag, unmatched entries are dropped, and every reconciled channel gets an
// entry (zero when the model provided none). The values are not renormalized
// against the total; the total/allocation gap is surfaced to the user as-is.
func reconcileBudget(m map[string]any, chans []catalog.Channel) *campaign.Budget {
	if m == nil {
		return nil
	}
	b := &campaign.Budget{
		Total:              floatOr(m, "total", 0),
		Currency:           stringOr(m, "currency", campaign.DefaultCurrency),
		PerChannel:         make(map[string]float64, len(chans)),
		AllocationStrategy: stringOr(m, "allocationStrategy", ""),
	}
	parsed := asMap(m["perChannel"])
	for _, ch := range chans {
		alloc := 0.0
		if v, ok := asFloat(parsed[ch.ID]); ok {
			alloc = v
		} else if v, ok := asFloat(parsed[string(ch.Type)]); ok {
			alloc = v
		}
		b.PerChannel[ch.ID] = alloc
	}
	return b
}

func reconcileObjectives(m map[string]any) *campaign.Objectives {
	if m == nil {
		return nil
	}
	return &campaign.Objectives{
		Primary:        stringOr(m, "primary", ""),
		Secondary:      stringSlice(m["secondary"]),
		KPIs:           stringSlice(m["kpis"]),
		SuccessMetrics: stringOr(m, "successMetrics", ""),
	}
}

// Loose-projection helpers. The parsed map came from an untrusted model, so
// every read tolerates a missing key or a wrong type.

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func stringOr(m map[string]any, key, fallback string) string {
	if m == nil {
		return fallback
	}
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func floatOr(m map[string]any, key string, fallback float64) float64 {
	if m == nil {
		return fallback
	}
	if f, ok := m[key].(float64); ok {
		return f
	}
	return fallback
}

func timeOr(m map[string]any, key string, fallback time.Time) time.Time {
	if t, ok := parseTime(stringOr(m, key, "")); ok {
		return t
	}
	return fallback
}

func stringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
