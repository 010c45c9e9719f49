// Command conwaybets starts a ConwayBets market node: the in-process host
// runtime for one chain plus the JSON-RPC query surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GauravKarakoti/ConwayBets/config"
	"github.com/GauravKarakoti/ConwayBets/events"
	"github.com/GauravKarakoti/ConwayBets/indexer"
	"github.com/GauravKarakoti/ConwayBets/rpc"
	"github.com/GauravKarakoti/ConwayBets/runtime"
	"github.com/GauravKarakoti/ConwayBets/storage"
	"github.com/GauravKarakoti/ConwayBets/wallet"

	// Import contract modules to trigger their init() self-registration.
	_ "github.com/GauravKarakoti/ConwayBets/contract/markets"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	keyPath := flag.String("key", "owner.key", "path to keystore file (written by -genkey, loaded at startup if present)")
	genKey := flag.Bool("genkey", false, "generate a new account key and exit")
	flag.Parse()

	// Read keystore password from environment (not CLI flags — they leak via ps).
	password := os.Getenv("CONWAY_PASSWORD")
	if password == "" && *genKey {
		log.Println("WARNING: CONWAY_PASSWORD not set — keystore will use an empty password")
	}

	// ---- generate key mode ----
	if *genKey {
		w, err := wallet.Generate()
		if err != nil {
			log.Fatal(err)
		}
		if err := wallet.SaveKey(*keyPath, password, w.PrivKey()); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Generated key. Account owner: %s\n", w.Owner())
		fmt.Printf("Saved to: %s\n", *keyPath)
		return
	}

	// ---- load config ----
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- load node key ----
	// Optional in serve mode; a bad password or corrupt keystore is fatal
	// rather than silently running without the key.
	if _, err := os.Stat(*keyPath); err == nil {
		priv, err := wallet.LoadKey(*keyPath, password)
		if err != nil {
			log.Fatalf("keystore %s: %v", *keyPath, err)
		}
		log.Printf("Loaded node key, account owner: %s", wallet.New(priv).Owner())
	} else {
		log.Printf("No keystore at %s, running without a node key", *keyPath)
	}

	// ---- open DB ----
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("mkdir data dir: %v", err)
	}
	db, err := storage.NewLevelDB(cfg.DataDir + "/chain")
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	// ---- events ----
	emitter := events.NewEmitter()

	// ---- indexer ----
	idx := indexer.New(db, emitter)

	// ---- host runtime ----
	host := runtime.NewHost(db, cfg.ChainID, cfg.Rules, emitter)
	router := runtime.NewRouter()
	router.Attach(host)

	// ---- RPC ----
	rpcAddr := fmt.Sprintf(":%d", cfg.RPCPort)
	hub := rpc.NewHub(emitter)
	handler := rpc.NewHandler(host, idx, cfg.ChainID)
	server := rpc.NewServer(rpcAddr, handler, hub, cfg.RPCAuthToken)
	if err := server.Start(); err != nil {
		log.Fatalf("rpc start: %v", err)
	}
	defer server.Stop()
	log.Printf("RPC listening on %s (chain %s)", server.Addr(), cfg.ChainID)
	if cfg.RPCAuthToken != "" {
		log.Println("RPC Bearer token authentication enabled")
	}

	// ---- message pump + shutdown ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := router.DeliverPending(); err != nil {
					log.Printf("[node] message delivery: %v", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Printf("[node] %v", err)
	}
	log.Println("Shutting down...")
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Config file not found at %s, using defaults.", path)
			return config.DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}
