package wallet

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestKeystoreRoundTrip(t *testing.T) {
	w, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "key.json")

	if err := SaveKey(path, "correct horse", w.PrivKey()); err != nil {
		t.Fatalf("SaveKey: %v", err)
	}
	priv, err := LoadKey(path, "correct horse")
	if err != nil {
		t.Fatalf("LoadKey: %v", err)
	}
	if !bytes.Equal(priv, w.PrivKey()) {
		t.Error("loaded key differs from saved key")
	}
	if New(priv).Owner() != w.Owner() {
		t.Error("loaded key derives a different owner")
	}
}

func TestKeystoreWrongPassword(t *testing.T) {
	w, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "key.json")
	if err := SaveKey(path, "right", w.PrivKey()); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadKey(path, "wrong"); err == nil {
		t.Error("wrong password should fail to decrypt")
	}
}

func TestKeystoreMissingFile(t *testing.T) {
	if _, err := LoadKey(filepath.Join(t.TempDir(), "absent.json"), "pw"); err == nil {
		t.Error("missing keystore should fail to load")
	}
}
