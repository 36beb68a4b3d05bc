package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDeletedFaucets(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/deleted-faucets", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"deletedAddresses":["0x4444444444444444444444444444444444444444","garbage","0xAbCdEf0000000000000000000000000000000001"]}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/", nil)
	require.NoError(t, err)

	deleted, err := client.GetDeletedFaucets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0x4444444444444444444444444444444444444444",
		"0xabcdef0000000000000000000000000000000001",
	}, deleted)
}

func TestGetDeletedFaucetsServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	_, err = client.GetDeletedFaucets(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
}

func TestSaveFaucetMetadata(t *testing.T) {
	t.Parallel()

	var got FaucetRegistration
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/faucet-metadata", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	registration := FaucetRegistration{
		FaucetAddress: "0x4444444444444444444444444444444444444444",
		OwnerAddress:  "0x5555555555555555555555555555555555555555",
		ChainID:       42220,
		FaucetType:    "dropcode",
		Name:          "Celo Builders",
	}
	require.NoError(t, client.SaveFaucetMetadata(context.Background(), registration))
	assert.Equal(t, registration, got)

	assert.Error(t, client.SaveFaucetMetadata(context.Background(), FaucetRegistration{FaucetAddress: "nope"}))
}

func TestNewClientRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient("  ", nil)
	assert.Error(t, err)
}
