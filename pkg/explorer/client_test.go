package explorer

import (
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoAddr = "bitcoincash:qq7ur36zd8uq2wqv0mle2khzwt79ue9ty57mvd95r0"

func TestUnspentOutputs(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/outputs", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"transaction_hash":"31ba61e23bc532e3210c6521757f6f9cf46540fc9a57dd2c1493551b14f7f4d4","index":0,"value":29316},
			{"transaction_hash":"aa00000000000000000000000000000000000000000000000000000000000000","index":3,"value":1200}
		]}`))
	}))
	defer server.Close()

	utxos, err := NewClient(server.URL).UnspentOutputs(context.Background(), demoAddr)
	require.NoError(t, err)

	assert.Equal(t, "is_spent(0),recipient("+demoAddr+")", gotQuery)
	require.Len(t, utxos, 2)
	assert.Equal(t, "31ba61e23bc532e3210c6521757f6f9cf46540fc9a57dd2c1493551b14f7f4d4", utxos[0].TxID)
	assert.Equal(t, uint32(0), utxos[0].Index)
	assert.Equal(t, uint64(29316), utxos[0].Value)
	assert.Equal(t, uint32(3), utxos[1].Index)
}

func TestMempoolOutputs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mempool/outputs", r.URL.Path)
		require.Equal(t, "recipient("+demoAddr+")", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	utxos, err := NewClient(server.URL).MempoolOutputs(context.Background(), demoAddr)
	require.NoError(t, err)
	assert.Empty(t, utxos)
}

func TestPushTransaction(t *testing.T) {
	rawTx := []byte{0x01, 0x00, 0x00, 0x00, 0x01}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/push/transaction", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, hex.EncodeToString(rawTx), r.PostForm.Get("data"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"transaction_hash":"d4f4f7141b5593142cdd579afc4065f49c6f7f7521650c21e332c53be261ba31"}}`))
	}))
	defer server.Close()

	txid, err := NewClient(server.URL).PushTransaction(context.Background(), rawTx)
	require.NoError(t, err)
	assert.Equal(t, "d4f4f7141b5593142cdd579afc4065f49c6f7f7521650c21e332c53be261ba31", txid)
}

func TestPushEmptyTransaction(t *testing.T) {
	_, err := NewClient("http://localhost:1").PushTransaction(context.Background(), nil)
	assert.Error(t, err)
}

func TestServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.UnspentOutputs(context.Background(), demoAddr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")

	_, err = client.PushTransaction(context.Background(), []byte{0x01})
	assert.Error(t, err)
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL).UnspentOutputs(ctx, demoAddr)
	assert.Error(t, err)
}
