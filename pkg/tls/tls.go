// Package tls provides TLS configuration for the observability HTTP server.
//
// Configurations enforce:
//   - TLS 1.3 minimum version
//   - Secure cipher suites only (AES-GCM, ChaCha20-Poly1305)
//   - Client certificate verification when a CA is configured
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// Config holds TLS certificate file paths for the HTTP server.
type Config struct {
	Enabled  bool
	CertFile string
	KeyFile  string
	CAFile   string
}

// Validate checks TLS configuration for security issues.
// Returns error if TLS is enabled but certificate files are missing or inaccessible.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.CertFile == "" || c.KeyFile == "" {
		return errors.New("tls enabled but cert/key files not specified")
	}

	paths := []string{c.CertFile, c.KeyFile}
	if c.CAFile != "" {
		paths = append(paths, c.CAFile)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("tls file %q: %w", path, err)
		}
	}

	return nil
}

// NewServerTLSConfig creates a TLS configuration for the HTTP server.
// When caFile is non-empty, client certificates are required and verified
// against it (mutual TLS).
//
// Security features:
//   - TLS 1.3 minimum (rejects TLS 1.2 and below)
//   - Secure cipher suites only
//   - Server cipher suite preference enabled
func NewServerTLSConfig(certFile, keyFile, caFile string) (*tls.Config, error) {
	if certFile == "" {
		return nil, errors.New("certificate file path cannot be empty")
	}
	if keyFile == "" {
		return nil, errors.New("key file path cannot be empty")
	}
	for _, path := range []string{certFile, keyFile} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("certificate file %q: %w", path, err)
		}
	}

	cfg := &tls.Config{
		MinVersion: tls.VersionTLS13,
		CipherSuites: []uint16{
			tls.TLS_AES_128_GCM_SHA256,
			tls.TLS_AES_256_GCM_SHA384,
			tls.TLS_CHACHA20_POLY1305_SHA256,
		},
		PreferServerCipherSuites: true,
	}

	if caFile != "" {
		caCert, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("read CA certificate: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA certificate")
		}
		cfg.ClientCAs = caCertPool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return cfg, nil
}
