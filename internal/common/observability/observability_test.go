package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RecordsStoreQueries(t *testing.T) {
	reg := promclient.NewRegistry()
	obs, err := New("cars-api-test", "", reg)
	require.NoError(t, err)
	defer obs.Shutdown()

	obs.RecordStoreQuery(context.Background(), "sql", "findAll", "ok", 12*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	found := false
	for _, f := range families {
		names = append(names, f.GetName())
		if strings.HasPrefix(f.GetName(), "store_queries") {
			found = true
		}
	}
	assert.True(t, found, "got %v", names)
}

func TestTracer_NilSafe(t *testing.T) {
	var obs *Observability
	assert.NotNil(t, obs.Tracer())
	obs.RecordStoreQuery(context.Background(), "sql", "findAll", "ok", time.Millisecond)
	obs.Shutdown()
}

func TestNewTracerProvider_WithoutExporter(t *testing.T) {
	tp, shutdown, err := NewTracerProvider("cars-api-test", "")
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}
