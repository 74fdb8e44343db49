package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TemporalTLS returns the client TLS settings for Temporal, or nil when
// no client certificate is configured.
func (c *Config) TemporalTLS() (*tls.Config, error) {
	if c.TemporalTLSCert == "" {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(c.TemporalTLSCert, c.TemporalTLSKey)
	if err != nil {
		return nil, fmt.Errorf("load temporal client cert: %w", err)
	}
	out := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	if c.TemporalTLSCACert == "" {
		return out, nil
	}

	caPEM, err := os.ReadFile(c.TemporalTLSCACert)
	if err != nil {
		return nil, fmt.Errorf("read temporal CA cert: %w", err)
	}
	out.RootCAs = x509.NewCertPool()
	if !out.RootCAs.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("parse temporal CA cert %s", c.TemporalTLSCACert)
	}
	return out, nil
}
