package catalog

import "time"

// DataSourceType identifies the kind of data-collection integration.
type DataSourceType string

const (
	SourceGTM           DataSourceType = "gtm"
	SourceFacebookPixel DataSourceType = "facebook-pixel"
	SourceGoogleAds     DataSourceType = "google-ads"
	SourceFacebookPage  DataSourceType = "facebook-page"
	SourceWebsite       DataSourceType = "website"
	SourceShopify       DataSourceType = "shopify"
	SourceCRM           DataSourceType = "crm"
	SourceTwitter       DataSourceType = "twitter"
	SourceReviewSites   DataSourceType = "review-sites"
	SourceAdManager     DataSourceType = "ad-manager"
)

// ChannelType identifies an outbound messaging medium.
type ChannelType string

const (
	ChannelEmail     ChannelType = "email"
	ChannelSMS       ChannelType = "sms"
	ChannelPush      ChannelType = "push"
	ChannelWhatsApp  ChannelType = "whatsapp"
	ChannelVoice     ChannelType = "voice"
	ChannelMessenger ChannelType = "messenger"
	ChannelAds       ChannelType = "ads"
)

// Connection status for data sources.
const (
	SourceConnected    = "connected"
	SourceDisconnected = "disconnected"
	SourceConnecting   = "connecting"
	SourceError        = "error"
)

// Status for channels.
const (
	ChannelActive   = "active"
	ChannelInactive = "inactive"
	ChannelError    = "error"
)

// DataSource is an external data-collection integration the user has connected.
type DataSource struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Type     DataSourceType `json:"type"`
	Status   string         `json:"status"`
	Config   map[string]any `json:"config,omitempty"`
	LastSync *time.Time     `json:"lastSync,omitempty"`
}

// Channel is an outbound messaging medium available for campaign delivery.
type Channel struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Type   ChannelType    `json:"type"`
	Status string         `json:"status"`
	Config map[string]any `json:"config,omitempty"`
}
