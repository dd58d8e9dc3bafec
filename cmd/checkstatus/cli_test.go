package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/auth"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/config"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleViews() []dto.ResultView {
	return []dto.ResultView{
		{
			Identifier: "1234567890",
			OrderRef:   "DO123456",
			Order:      dto.OrderView{Found: true, OK: true, BasicOK: true, HeadOK: true, Location: "LAX", Status: "In Transit", SubStatus: "Departed"},
			Trace:      dto.TraceView{Attempted: true, Found: true, Status: "In Transit"},
		},
		{
			Identifier: "9999999999",
			Trace:      dto.TraceView{Attempted: true, NotFound: true},
		},
	}
}

func TestCollectIdentifiers(t *testing.T) {
	t.Run("args", func(t *testing.T) {
		ids, err := collectIdentifiers([]string{"111,222", "333"}, "", strings.NewReader("ignored"))
		require.NoError(t, err)
		assert.Equal(t, []string{"111", "222", "333"}, ids)
	})

	t.Run("stdin", func(t *testing.T) {
		ids, err := collectIdentifiers(nil, "", strings.NewReader("111\n222 333\n\n444;555\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"111", "222", "333", "444", "555"}, ids)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ids.txt")
		require.NoError(t, os.WriteFile(path, []byte("PU-0001\nPU-0002\n"), 0o600))

		ids, err := collectIdentifiers(nil, path, strings.NewReader("ignored"))
		require.NoError(t, err)
		assert.Equal(t, []string{"PU-0001", "PU-0002"}, ids)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := collectIdentifiers(nil, filepath.Join(t.TempDir(), "nope.txt"), nil)
		assert.Error(t, err)
	})
}

func TestRenderResults_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderResults(&buf, outputTable, sampleViews()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "IDENTIFIER"))
	assert.Contains(t, lines[1], "DO123456")
	assert.Contains(t, lines[1], "In Transit / Departed")
	assert.Contains(t, lines[2], "not found")
}

func TestRenderResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderResults(&buf, outputJSON, sampleViews()))

	var got []dto.ResultView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleViews(), got)
}

func TestRenderResults_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderResults(&buf, outputYAML, sampleViews()))
	assert.Contains(t, buf.String(), "order_ref: DO123456")

	var got []dto.ResultView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleViews(), got)
}

func TestStates(t *testing.T) {
	assert.Equal(t, "not found", orderState(dto.OrderView{}))
	assert.Equal(t, "network error", orderState(dto.OrderView{Found: true, NetworkError: true}))
	assert.Equal(t, "error", orderState(dto.OrderView{Found: true, GeneralError: true}))
	assert.Equal(t, "partial", orderState(dto.OrderView{Found: true, OK: true, Partial: true}))
	assert.Equal(t, "skipped", traceState(dto.TraceView{}))
	assert.Equal(t, "ok", traceState(dto.TraceView{Attempted: true, Found: true}))
}

func TestIssueToken(t *testing.T) {
	authCfg := config.AuthConfig{JWTSecret: "cli-secret", JWTIssuer: "checkstatus", TokenTTL: time.Hour}

	var buf bytes.Buffer
	require.NoError(t, issueToken(&buf, authCfg, "ops", 0, []string{auth.ScopeReconcile, auth.ScopeSessionAdmin}))

	token := strings.SplitN(buf.String(), "\n", 2)[0]
	svc, err := auth.NewJWTService(auth.Config{Secret: "cli-secret", Issuer: "checkstatus"})
	require.NoError(t, err)
	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.True(t, claims.HasScope(auth.ScopeSessionAdmin))

	assert.Error(t, issueToken(&buf, config.AuthConfig{}, "ops", 0, nil), "no secret")
	assert.Error(t, issueToken(&buf, authCfg, "ops", 0, []string{"admin"}), "unknown scope")
}
