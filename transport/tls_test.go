// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeCertDir writes a self-signed cert.pem/key.pem pair (plus ca.pem
// mirroring the certificate) in the layout DOCKER_CERT_PATH uses.
func writeCertDir(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "client"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshalling key: %v", err)
	}

	dir := t.TempDir()
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	for name, data := range map[string][]byte{
		"cert.pem": certPEM,
		"key.pem":  keyPEM,
		"ca.pem":   certPEM,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadTLS(t *testing.T) {
	dir := writeCertDir(t)

	config, err := LoadTLS(TLSOptions{CertDir: dir})
	if err != nil {
		t.Fatalf("LoadTLS: %v", err)
	}
	if len(config.Certificates) != 1 {
		t.Errorf("certificates = %d, want 1", len(config.Certificates))
	}
	if !config.InsecureSkipVerify {
		t.Error("expected verification disabled when VerifyPeer is false")
	}
	if config.RootCAs != nil {
		t.Error("CA pool loaded without VerifyPeer")
	}
}

func TestLoadTLSVerifyPeer(t *testing.T) {
	dir := writeCertDir(t)

	config, err := LoadTLS(TLSOptions{CertDir: dir, VerifyPeer: true})
	if err != nil {
		t.Fatalf("LoadTLS: %v", err)
	}
	if config.InsecureSkipVerify {
		t.Error("verification disabled despite VerifyPeer")
	}
	if config.RootCAs == nil {
		t.Error("no CA pool loaded")
	}
}

func TestLoadTLSMissingMaterial(t *testing.T) {
	if _, err := LoadTLS(TLSOptions{CertDir: t.TempDir()}); err == nil {
		t.Error("expected an error for an empty certificate directory")
	}

	// VerifyPeer without ca.pem present.
	dir := writeCertDir(t)
	if err := os.Remove(filepath.Join(dir, "ca.pem")); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTLS(TLSOptions{CertDir: dir, VerifyPeer: true}); err == nil {
		t.Error("expected an error when ca.pem is missing")
	}
}
