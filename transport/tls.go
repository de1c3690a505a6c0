// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
)

// TLSOptions points at caller-supplied identity material for an
// encrypted endpoint. The transport loads the files but does not
// generate or manage certificates.
type TLSOptions struct {
	// CertDir is a directory containing cert.pem and key.pem, plus
	// ca.pem when VerifyPeer is set. This matches the layout written
	// by "docker-machine" style tooling and referenced by the
	// DOCKER_CERT_PATH convention.
	CertDir string

	// VerifyPeer enables verification of the daemon's certificate
	// against ca.pem in CertDir. When false the daemon's identity is
	// not checked.
	VerifyPeer bool
}

// LoadTLS builds a tls.Config from the certificate directory.
func LoadTLS(options TLSOptions) (*tls.Config, error) {
	certFile := filepath.Join(options.CertDir, "cert.pem")
	keyFile := filepath.Join(options.CertDir, "key.pem")

	certificate, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("transport: loading client certificate from %s: %w", options.CertDir, err)
	}

	config := &tls.Config{
		Certificates:       []tls.Certificate{certificate},
		InsecureSkipVerify: !options.VerifyPeer,
	}

	if options.VerifyPeer {
		caFile := filepath.Join(options.CertDir, "ca.pem")
		caData, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("transport: reading CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caData) {
			return nil, fmt.Errorf("transport: no certificates found in %s", caFile)
		}
		config.RootCAs = pool
	}

	return config, nil
}
