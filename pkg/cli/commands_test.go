package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhe-console/internal/domain"
)

func TestModelsList_TableOutput(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"models":[
			{"id":"dim_customer","name":"Customer","type":"dimension","deployed":true,"view_name":"DIM_CUSTOMER_V"},
			{"id":"fct_orders","name":"Orders","type":"fact","deployment_error":"stage failed"}
		]}`)
	})
	host := newFakeConsole(t, mux)

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"--host", host, "models", "list"})

	restore := captureStdout(t)
	err := rootCmd.Execute()
	output := restore()
	require.NoError(t, err)

	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "deployed")
	assert.Contains(t, output, "error")
	assert.Contains(t, output, "DIM_CUSTOMER_V")
}

func TestModelsList_FiltersAndJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"models":[
			{"id":"dim_customer","type":"dimension","deployed":true},
			{"id":"dim_product","type":"dimension"},
			{"id":"fct_orders","type":"fact","deployed":true}
		]}`)
	})
	host := newFakeConsole(t, mux)

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"--host", host, "--output", "json", "models", "list", "--type", "dimension", "--deployed"})

	restore := captureStdout(t)
	err := rootCmd.Execute()
	output := restore()
	require.NoError(t, err)

	var out struct {
		Models []domain.CatalogModel `json:"models"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	require.Len(t, out.Models, 1)
	assert.Equal(t, "dim_customer", out.Models[0].ID)
}

func TestMetrics_TableOutput(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/dashboard/metrics", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"database": "DWH",
			"connected_sources": 2,
			"storage_objects": {"total": 41},
			"deployed_models": {"dimensions": 3, "facts": 1, "total": 4},
			"governance": {"steward_coverage_percentage": 62.5}
		}`)
	})
	host := newFakeConsole(t, mux)

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"--host", host, "metrics"})

	restore := captureStdout(t)
	err := rootCmd.Execute()
	output := restore()
	require.NoError(t, err)

	assert.Contains(t, output, "DWH")
	assert.Contains(t, output, "62.5%")
}

func TestValidate_ReportsMissingSchemas(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/database/validate", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"valid":false,"database_name":"DWH","database_exists":true,"missing_schemas":["MODEL","STAGE"]}`)
	})
	host := newFakeConsole(t, mux)

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"--host", host, "validate"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL, STAGE")
}

func TestValidate_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/database/validate", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"valid":true,"database_name":"DWH","database_exists":true,"existing_schemas":["MODEL","STAGE"]}`)
	})
	host := newFakeConsole(t, mux)

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"--host", host, "validate"})

	restore := captureStdout(t)
	err := rootCmd.Execute()
	output := restore()
	require.NoError(t, err)
	assert.Contains(t, output, "DWH is valid")
}

func TestAPIError_CarriesConsoleEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"error":"engine unreachable","code":502}`)
	})
	host := newFakeConsole(t, mux)

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"--host", host, "models", "list"})

	err := rootCmd.Execute()
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.HTTPStatus)
	assert.Contains(t, apiErr.Message, "engine unreachable")
}

func TestRootCmd_RejectsUnknownOutputFormat(t *testing.T) {
	newFakeConsole(t, http.NewServeMux())

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"--output", "yaml", "version"})

	err := rootCmd.Execute()
	require.ErrorContains(t, err, "unsupported output format")
}

func TestRootCmd_HostPrecedenceEnvOverProfile(t *testing.T) {
	mux := http.NewServeMux()
	hit := false
	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		hit = true
		io.WriteString(w, `{"models":[]}`)
	})
	host := newFakeConsole(t, mux)

	// Profile points at a dead host; UHE_HOST must win.
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {Host: "http://127.0.0.1:1"},
		},
	}))
	t.Setenv("UHE_HOST", host)

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"models", "list"})

	restore := captureStdout(t)
	err := rootCmd.Execute()
	restore()
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestVersionCmd(t *testing.T) {
	newFakeConsole(t, http.NewServeMux())

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"version"})

	restore := captureStdout(t)
	err := rootCmd.Execute()
	output := restore()
	require.NoError(t, err)
	assert.Contains(t, output, "uhe version")
}
