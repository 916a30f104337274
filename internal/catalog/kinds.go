package catalog

import "github.com/google/uuid"

// DataSourceKind describes one integration kind the system understands.
type DataSourceKind struct {
	Type DataSourceType `json:"type"`
	Name string         `json:"name"`
}

// ChannelKind describes one delivery channel kind.
type ChannelKind struct {
	Type ChannelType `json:"type"`
	Name string      `json:"name"`
}

// DataSourceKinds is the fixed set of integrations available for connection.
var DataSourceKinds = []DataSourceKind{
	{Type: SourceGTM, Name: "Google Tag Manager"},
	{Type: SourceFacebookPixel, Name: "Facebook Pixel"},
	{Type: SourceGoogleAds, Name: "Google Ads Tag"},
	{Type: SourceFacebookPage, Name: "Facebook Page"},
	{Type: SourceWebsite, Name: "Website Analytics"},
	{Type: SourceShopify, Name: "Shopify Store"},
	{Type: SourceCRM, Name: "CRM System"},
	{Type: SourceTwitter, Name: "Twitter Page"},
	{Type: SourceReviewSites, Name: "Review Sites"},
	{Type: SourceAdManager, Name: "Ad Manager"},
}

// ChannelKinds is the fixed set of delivery channels.
var ChannelKinds = []ChannelKind{
	{Type: ChannelEmail, Name: "Email Marketing"},
	{Type: ChannelSMS, Name: "SMS Campaigns"},
	{Type: ChannelPush, Name: "Push Notifications"},
	{Type: ChannelWhatsApp, Name: "WhatsApp Business"},
	{Type: ChannelVoice, Name: "Voice Calls"},
	{Type: ChannelMessenger, Name: "Messenger"},
	{Type: ChannelAds, Name: "Paid Advertising"},
}

// LookupDataSourceKind returns the kind definition for a type tag.
func LookupDataSourceKind(t DataSourceType) (DataSourceKind, bool) {
	for _, k := range DataSourceKinds {
		if k.Type == t {
			return k, true
		}
	}
	return DataSourceKind{}, false
}

// LookupChannelKind returns the kind definition for a type tag.
func LookupChannelKind(t ChannelType) (ChannelKind, bool) {
	for _, k := range ChannelKinds {
		if k.Type == t {
			return k, true
		}
	}
	return ChannelKind{}, false
}

// NewDataSource instantiates a freshly connected data source of the given kind.
func NewDataSource(kind DataSourceKind) DataSource {
	return DataSource{
		ID:     uuid.NewString(),
		Name:   kind.Name,
		Type:   kind.Type,
		Status: SourceConnected,
	}
}

// NewChannel instantiates an active channel of the given kind.
func NewChannel(kind ChannelKind) Channel {
	return Channel{
		ID:     uuid.NewString(),
		Name:   kind.Name,
		Type:   kind.Type,
		Status: ChannelActive,
	}
}
