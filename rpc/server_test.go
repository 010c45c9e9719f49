package rpc_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GauravKarakoti/ConwayBets/config"
	"github.com/GauravKarakoti/ConwayBets/events"
	"github.com/GauravKarakoti/ConwayBets/indexer"
	"github.com/GauravKarakoti/ConwayBets/internal/testutil"
	"github.com/GauravKarakoti/ConwayBets/rpc"
	"github.com/GauravKarakoti/ConwayBets/runtime"
	"github.com/GauravKarakoti/ConwayBets/wallet"
)

func startServer(t *testing.T, authToken string) (*rpc.Server, *events.Emitter, *wallet.Wallet) {
	t.Helper()
	db := testutil.NewMemDB()
	emitter := events.NewEmitter()
	idx := indexer.New(db, emitter)
	host := runtime.NewHost(db, testChain, config.Rules{}, emitter)
	runtime.NewRouter().Attach(host)

	w, err := wallet.Generate()
	if err != nil {
		t.Fatal(err)
	}
	hub := rpc.NewHub(emitter)
	srv := rpc.NewServer("127.0.0.1:0", rpc.NewHandler(host, idx, testChain), hub, authToken)
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = srv.Stop() })
	return srv, emitter, w
}

func rpcCall(t *testing.T, addr, token, method string, params any) rpc.Response {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			t.Fatal(err)
		}
		raw = data
	}
	body, err := json.Marshal(rpc.Request{JSONRPC: "2.0", ID: 1, Method: method, Params: raw})
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, "http://"+addr+"/", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	httpResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer httpResp.Body.Close()

	var resp rpc.Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestServerEndToEnd(t *testing.T) {
	srv, _, w := startServer(t, "")

	op, err := w.CreateMarket(testChain, "over http", "", 1<<40, []string{"Yes", "No"})
	if err != nil {
		t.Fatal(err)
	}
	resp := rpcCall(t, srv.Addr(), "", "submitOperation", op)
	if resp.Error != nil {
		t.Fatalf("submit: %v", resp.Error)
	}

	resp = rpcCall(t, srv.Addr(), "", "markets", nil)
	if resp.Error != nil {
		t.Fatal(resp.Error)
	}
	var views []rpc.MarketView
	data, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(data, &views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0].Title != "over http" {
		t.Errorf("markets over http: %+v", views)
	}
}

func TestServerAuth(t *testing.T) {
	srv, _, _ := startServer(t, "secret")

	resp := rpcCall(t, srv.Addr(), "", "chainInfo", nil)
	if resp.Error == nil || resp.Error.Code != rpc.CodeUnauthorized {
		t.Errorf("missing token: %+v", resp.Error)
	}
	resp = rpcCall(t, srv.Addr(), "wrong", "chainInfo", nil)
	if resp.Error == nil || resp.Error.Code != rpc.CodeUnauthorized {
		t.Errorf("wrong token: %+v", resp.Error)
	}
	resp = rpcCall(t, srv.Addr(), "secret", "chainInfo", nil)
	if resp.Error != nil {
		t.Errorf("valid token rejected: %v", resp.Error)
	}
}

func TestServerRejectsBadVersion(t *testing.T) {
	srv, _, _ := startServer(t, "")

	body := []byte(`{"jsonrpc":"1.0","id":1,"method":"chainInfo"}`)
	httpResp, err := http.Post("http://"+srv.Addr()+"/", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer httpResp.Body.Close()
	var resp rpc.Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != rpc.CodeInvalidRequest {
		t.Errorf("bad version: %+v", resp.Error)
	}
}

func TestEventFeedBroadcast(t *testing.T) {
	srv, emitter, _ := startServer(t, "")

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Give the hub a moment to register the client before emitting.
	time.Sleep(50 * time.Millisecond)
	emitter.Emit(events.Event{
		Type:    events.EventMarketCreated,
		ChainID: testChain,
		Data:    map[string]any{"market": "conwaybets-test:1"},
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev events.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != events.EventMarketCreated {
		t.Errorf("event type: got %s", ev.Type)
	}
	if ev.Data["market"] != "conwaybets-test:1" {
		t.Errorf("event data: %v", ev.Data)
	}
}
