package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhe-console/internal/domain"
	"uhe-console/internal/middleware"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, nil)
}

func TestClient_ForwardsRequestID(t *testing.T) {
	var header string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-Request-ID")
		io.WriteString(w, `{"message":"ok","dimensions":[]}`)
	})

	ctx := middleware.WithRequestID(context.Background(), "trace-42")
	_, err := c.ListDimensions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "trace-42", header, "the console's correlation id must reach the engine")

	_, err = c.ListDimensions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, header, "no id in the context means no header on the wire")
}

func TestClient_UpstreamErrorCarriesDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"detail": "deployment already running"}`)
	})

	_, err := c.ListDimensions(context.Background())
	var uerr *domain.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, http.StatusConflict, uerr.Status)
	assert.Equal(t, "deployment already running", uerr.Detail)
}

func TestClient_UpstreamErrorFallsBackToStatusText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "not json at all")
	})

	_, err := c.ModellingMetrics(context.Background())
	var uerr *domain.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), uerr.Detail)
}

func TestClient_UpstreamErrorWithStructuredDetail(t *testing.T) {
	// FastAPI validation errors carry a detail array; it is passed through raw.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail": [{"loc":["body","model_ids"],"msg":"field required"}]}`)
	})

	_, err := c.LoadModalData(context.Background(), []string{"dim_customer"})
	var uerr *domain.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Contains(t, uerr.Detail, "field required")
}

func TestClient_LoadModalData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/dimensional-models/modal-loader", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"dim_customer"}, body["model_ids"])

		io.WriteString(w, `{"message":"ok","databases":["RAW"],"databases_schemas_map":{"RAW":["SAP"]}}`)
	})

	modal, err := c.LoadModalData(context.Background(), []string{"dim_customer"})
	require.NoError(t, err)
	assert.Equal(t, []string{"RAW"}, modal.Databases)
	assert.Equal(t, []string{"SAP"}, modal.DatabaseSchemas["RAW"])
}

func TestClient_ListDimensionsTagsType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dimensional-models/dimensions", r.URL.Path)
		io.WriteString(w, `{"message":"ok","dimensions":[{"id":"dim_customer","name":"Customer"}]}`)
	})

	dims, err := c.ListDimensions(context.Background())
	require.NoError(t, err)
	require.Len(t, dims, 1)
	assert.Equal(t, "dimension", dims[0].Type)
}

func TestClient_ListColumnsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "RAW", q.Get("db"))
		assert.Equal(t, "SAP", q.Get("schema"))
		assert.Equal(t, "KNA1", q.Get("table"))
		io.WriteString(w, `{"message":"ok","data":[{"name":"KUNNR","type":"VARCHAR(10)"}]}`)
	})

	cols, err := c.ListColumns(context.Background(), "RAW", "SAP", "KNA1")
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "KUNNR", cols[0].Name)
}

func TestClient_ListBlueprintDetailsFilters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blueprint/list/detailed", r.URL.Path)
		assert.Equal(t, "sap", r.URL.Query().Get("source"))
		assert.Equal(t, "cust", r.URL.Query().Get("id_like"))
		io.WriteString(w, `{"message":"ok","blueprints":[{"id":"customer","source":"sap"}]}`)
	})

	bps, err := c.ListBlueprintDetails(context.Background(), "sap", "cust")
	require.NoError(t, err)
	require.Len(t, bps, 1)
}

func TestClient_UpdateBlueprintBindingsEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/blueprint/bindings", r.URL.Path)

		var body struct {
			BlueprintID string                 `json:"blueprint_id"`
			Bindings    map[string]interface{} `json:"bindings"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "customer", body.BlueprintID)
		assert.Equal(t, "RAW", body.Bindings["binding_db"])

		io.WriteString(w, `{"message":"updated"}`)
	})

	err := c.UpdateBlueprintBindings(context.Background(), "customer", domain.BindingsUpdate{"binding_db": "RAW"})
	require.NoError(t, err)
}

func TestClient_DeployStagedReturnsStream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		var req domain.DeployRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.ReplaceObjects)

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "event: complete\ndata: {\"total\":0}\n\n")
	})

	stream, err := c.DeployStaged(context.Background(), domain.DeployRequest{
		ModelIDs:       []string{"dim_customer"},
		ReplaceObjects: true,
	})
	require.NoError(t, err)
	defer stream.Close()

	ev, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, EventComplete, ev.Type)
}

func TestClient_DeployStagedRejectsErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"detail":"busy"}`)
	})

	_, err := c.DeployStaged(context.Background(), domain.DeployRequest{ModelIDs: []string{"x"}})
	var uerr *domain.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "busy", uerr.Detail)
}

func TestClient_DeploymentSummaryFlattensSections(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dimensional-models/deployment-summary", r.URL.Path)
		io.WriteString(w, `{
			"message": "ok",
			"models": [{
				"model_id": "dim_customer",
				"model_name": "Customer",
				"model_type": "dimension",
				"staging": {"items": [{"name": "STG_KNA1"}], "count": 1},
				"data_processing": {"streams": [{"name": "STR_KNA1"}], "tasks": [{"name": "TSK_KNA1"}], "count": 2},
				"model_deployment": {"name": "DIM_CUSTOMER", "model_id": "dim_customer", "model_type": "dimension"},
				"seed_load": {
					"available": true,
					"blueprints": [{"blueprint_id": "customer", "source": "sap", "binding_object": "KNA1"}]
				}
			}]
		}`)
	})

	summary, err := c.DeploymentSummary(context.Background(), []string{"dim_customer"})
	require.NoError(t, err)
	require.Len(t, summary.Models, 1)

	m := summary.Models[0]
	steps := map[string][]domain.SummaryItem{}
	for _, st := range m.Steps {
		steps[st.Step] = st.Items
	}

	require.Len(t, steps[StepStaging], 1)
	// Streams and tasks collapse into the one processing step.
	require.Len(t, steps[StepDataProcessing], 2)
	require.Len(t, steps[StepModelDeployment], 1)
	require.Len(t, steps[StepSeedLoad], 1)
	assert.Equal(t, "REFRESH_KNA1", steps[StepSeedLoad][0].Name)
	assert.Equal(t, "customer", steps[StepSeedLoad][0].BlueprintID)
	// Empty sections produce no steps.
	assert.NotContains(t, steps, StepApplyTags)
}

func TestClient_AccountURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/snowflake/account-url", r.URL.Path)
		io.WriteString(w, `{"account_url":"https://acme.snowflakecomputing.com"}`)
	})

	u, err := c.AccountURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://acme.snowflakecomputing.com", u)
}
