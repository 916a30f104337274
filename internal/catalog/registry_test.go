package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryUpsertDataSource(t *testing.T) {
	r := NewRegistry()
	ds := DataSource{ID: "ds1", Name: "CRM System", Type: SourceCRM, Status: SourceConnecting}
	r.ConnectDataSource(ds)

	ds.Status = SourceConnected
	r.ConnectDataSource(ds)

	got := r.DataSources()
	require.Len(t, got, 1, "same id updates in place")
	assert.Equal(t, SourceConnected, got[0].Status)
	assert.True(t, r.HasDataSource("ds1"))

	assert.True(t, r.DisconnectDataSource("ds1"))
	assert.False(t, r.DisconnectDataSource("ds1"))
	assert.Empty(t, r.DataSources())
}

func TestRegistryToggleChannel(t *testing.T) {
	r := NewRegistry()
	r.AddChannel(Channel{ID: "c1", Type: ChannelEmail, Status: ChannelActive})

	status, ok := r.ToggleChannel("c1")
	require.True(t, ok)
	assert.Equal(t, ChannelInactive, status)

	status, _ = r.ToggleChannel("c1")
	assert.Equal(t, ChannelActive, status)

	_, ok = r.ToggleChannel("missing")
	assert.False(t, ok)
}

func TestRegistrySnapshotIsolation(t *testing.T) {
	r := NewRegistry()
	r.AddChannel(Channel{ID: "c1", Type: ChannelEmail, Status: ChannelActive})

	snap := r.Channels()
	snap[0].Status = ChannelError

	assert.Equal(t, ChannelActive, r.Channels()[0].Status, "mutating a snapshot does not touch the registry")
}

func TestRegistryMarkSynced(t *testing.T) {
	r := NewRegistry()
	r.ConnectDataSource(DataSource{ID: "ds1", Type: SourceGTM, Status: SourceConnected})
	r.ConnectDataSource(DataSource{ID: "ds2", Type: SourceShopify, Status: SourceError})

	at := time.Now()
	assert.Equal(t, 1, r.MarkSynced(at), "only connected sources are stamped")

	for _, ds := range r.DataSources() {
		if ds.ID == "ds1" {
			require.NotNil(t, ds.LastSync)
			assert.Equal(t, at, *ds.LastSync)
		} else {
			assert.Nil(t, ds.LastSync)
		}
	}
}

func TestKindLookupsAndConstructors(t *testing.T) {
	kind, ok := LookupDataSourceKind(SourceShopify)
	require.True(t, ok)
	assert.Equal(t, "Shopify Store", kind.Name)

	_, ok = LookupDataSourceKind("warehouse")
	assert.False(t, ok)

	chKind, ok := LookupChannelKind(ChannelWhatsApp)
	require.True(t, ok)

	ds := NewDataSource(kind)
	assert.NotEmpty(t, ds.ID)
	assert.Equal(t, SourceConnected, ds.Status)
	assert.Equal(t, kind.Name, ds.Name)

	ch := NewChannel(chKind)
	assert.NotEmpty(t, ch.ID)
	assert.Equal(t, ChannelActive, ch.Status)
	assert.NotEqual(t, ds.ID, ch.ID)
}
