package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solend-client/pkg/retry"
)

const testConfigJSON = `{
  "programID": "So1endDq2YkqhipRh3WViPa8hdiSpxWy6z3Z6tMCpAo",
  "assets": [
    {"name": "Wrapped SOL", "symbol": "SOL", "decimals": 9, "mintAddress": "So11111111111111111111111111111111111111112"},
    {"name": "USD Coin", "symbol": "USDC", "decimals": 6, "mintAddress": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"}
  ],
  "markets": [
    {
      "name": "TURBO SOL",
      "isPrimary": false,
      "address": "7RCz8wb6WXxUhAigok9ttgrVgDFFFbibcirECzWSBauM",
      "authorityAddress": "55YceCDfyvdcPPozDiMeNp9TpwmL1hdoTEFw5BMNWbpf",
      "reserves": []
    },
    {
      "name": "main",
      "isPrimary": true,
      "address": "4UpD2fh7xH3VP9QQaXtsS1YY3bxzWhtfpks7FatyKvdY",
      "authorityAddress": "DdZR6zRFiUt4S5mg7AV1uKB2z1f1WzcNYCaTEEWPAuby",
      "reserves": [
        {
          "asset": "SOL",
          "address": "8PbodeaosQP19SjYFx855UMqWxH2HynZLdBXmsrbac36",
          "collateralMintAddress": "5h6ssFpeDeRbzsEHDbTQNH7nVGgsKrZydxdSTnLm6QdV",
          "collateralSupplyAddress": "B1ATuYXNkacjjJS78MAmqu8Lu8PvEPt51u4oBasH1m1g",
          "liquidityAddress": "8UviNr47S8eL6J3WfDxMRa3hvLta1VDJwNWqsDgtN3Cv",
          "liquidityFeeReceiverAddress": "5wo1tFpi4HaVKnemqaXeQnBEpezrJXcXvuztYaPhvgC7"
        }
      ]
    }
  ],
  "oracles": {
    "pythProgramID": "FsJ3A3u2vn5cTVofAjvy6y5kwABJAqYWpe4975bi2epH",
    "switchboardProgramID": "DtmE9D2CSB4L5D6A15mraeEjrGMm6auWVzgaD8hK2tZM",
    "assets": [
      {
        "asset": "SOL",
        "priceAddress": "H6ARHf6YXhGYeQfUzQNGk6rDNnLBQKrenN712K4AQJEG",
        "switchboardFeedAddress": "AdtRGGhmqvom3Jemp5YNrxd9q9unX36BZk1pujkkXijL"
      }
    ]
  }
}`

func TestClient_GetConfig(t *testing.T) {
	var deployment string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/config", r.URL.Path)
		deployment = r.URL.Query().Get("deployment")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testConfigJSON))
	}))
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL + "/"))

	config, err := client.GetConfig(context.Background(), DeploymentProduction)
	require.NoError(t, err)
	assert.Equal(t, DeploymentProduction, deployment)

	assert.Equal(t, "So1endDq2YkqhipRh3WViPa8hdiSpxWy6z3Z6tMCpAo", config.ProgramID)
	require.Len(t, config.Assets, 2)
	assert.EqualValues(t, 9, config.Assets[0].Decimals)
	require.Len(t, config.Markets, 2)
	require.Len(t, config.Markets[1].Reserves, 1)
	assert.Equal(t, "5wo1tFpi4HaVKnemqaXeQnBEpezrJXcXvuztYaPhvgC7", config.Markets[1].Reserves[0].LiquidityFeeReceiverAddress)
	require.Len(t, config.Oracles.Assets, 1)
	assert.Equal(t, "AdtRGGhmqvom3Jemp5YNrxd9q9unX36BZk1pujkkXijL", config.Oracles.Assets[0].SwitchboardFeedAddress)
}

func TestClient_Errors(t *testing.T) {
	var calls int32
	status := http.StatusNotFound
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(status)
	}))
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL))

	_, err := client.GetConfig(context.Background(), "unknown")
	assert.Equal(t, ErrDeploymentNotFound, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// Server errors are only retried when the caller opts in
	status = http.StatusServiceUnavailable
	atomic.StoreInt32(&calls, 0)
	_, err = client.GetConfig(context.Background(), DeploymentDevnet)
	assert.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, 0)
	client = NewClient(WithEndpoint(server.URL), WithRetryStrategies(retry.Limit(3)))
	_, err = client.GetConfig(context.Background(), DeploymentDevnet)
	assert.Error(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))

	var statusErr *retry.StatusCodeError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)

	status = http.StatusBadRequest
	_, err = client.GetConfig(context.Background(), DeploymentDevnet)
	assert.Error(t, err)
	assert.NotEqual(t, ErrDeploymentNotFound, errors.Cause(err))
}

func TestClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{"))
	}))
	defer server.Close()

	_, err := NewClient(WithEndpoint(server.URL)).GetConfig(context.Background(), DeploymentProduction)
	assert.Error(t, err)
}

func TestClient_DefaultRetryStrategies(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"programID":"So1endDq2YkqhipRh3WViPa8hdiSpxWy6z3Z6tMCpAo"}`))
	}))
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL), WithRetryStrategies(DefaultRetryStrategies()...))

	cfg, err := client.GetConfig(context.Background(), DeploymentProduction)
	require.NoError(t, err)
	assert.Equal(t, "So1endDq2YkqhipRh3WViPa8hdiSpxWy6z3Z6tMCpAo", cfg.ProgramID)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestClient_Cache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(testConfigJSON))
	}))
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL), WithCache(time.Minute))

	first, err := client.GetConfig(context.Background(), DeploymentProduction)
	require.NoError(t, err)
	second, err := client.GetConfig(context.Background(), DeploymentProduction)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	_, err = client.GetConfig(context.Background(), DeploymentDevnet)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}
