// Package tlsutil loads and generates TLS material for the gRPC listener.
package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc/credentials"
)

const (
	caValidity     = 5 * 365 * 24 * time.Hour
	serverValidity = 90 * 24 * time.Hour
)

// ServerTLSConfig loads TLS credentials for a gRPC server from cert and key files.
func ServerTLSConfig(certFile, keyFile string) (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: load server key pair: %w", err)
	}
	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}), nil
}

// CertFiles lists the files written by GenerateSelfSignedCert.
type CertFiles struct {
	CA        string
	CAKey     string
	Server    string
	ServerKey string
}

// GenerateSelfSignedCert writes a throwaway CA and a server certificate for
// hosts into outDir. Hosts that parse as IPs become IP SANs, the rest DNS SANs.
func GenerateSelfSignedCert(hosts []string, outDir string) (CertFiles, error) {
	files := CertFiles{
		CA:        filepath.Join(outDir, "ca.pem"),
		CAKey:     filepath.Join(outDir, "ca-key.pem"),
		Server:    filepath.Join(outDir, "server.pem"),
		ServerKey: filepath.Join(outDir, "server-key.pem"),
	}
	if len(hosts) == 0 {
		return files, fmt.Errorf("tlsutil: at least one host is required")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return files, fmt.Errorf("tlsutil: mkdir %s: %w", outDir, err)
	}

	ca, err := issue(&x509.Certificate{
		Subject:               pkix.Name{CommonName: "cardiod dev CA"},
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}, caValidity, nil)
	if err != nil {
		return files, fmt.Errorf("tlsutil: CA: %w", err)
	}

	leaf := &x509.Certificate{
		Subject:     pkix.Name{CommonName: hosts[0]},
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			leaf.IPAddresses = append(leaf.IPAddresses, ip)
		} else {
			leaf.DNSNames = append(leaf.DNSNames, h)
		}
	}
	server, err := issue(leaf, serverValidity, ca)
	if err != nil {
		return files, fmt.Errorf("tlsutil: server: %w", err)
	}

	if err := ca.write(files.CA, files.CAKey); err != nil {
		return files, err
	}
	return files, server.write(files.Server, files.ServerKey)
}

type keyPair struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
	der  []byte
}

// issue signs template with parent, or self-signs when parent is nil.
func issue(template *x509.Certificate, validity time.Duration, parent *keyPair) (*keyPair, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 127))
	if err != nil {
		return nil, fmt.Errorf("serial: %w", err)
	}

	now := time.Now()
	template.SerialNumber = serial
	template.NotBefore = now.Add(-time.Minute)
	template.NotAfter = now.Add(validity)

	signer, signerCert := key, template
	if parent != nil {
		signer, signerCert = parent.key, parent.cert
	}
	der, err := x509.CreateCertificate(rand.Reader, template, signerCert, &key.PublicKey, signer)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	return &keyPair{cert: cert, key: key, der: der}, nil
}

func (k *keyPair) write(certPath, keyPath string) error {
	keyDER, err := x509.MarshalECPrivateKey(k.key)
	if err != nil {
		return fmt.Errorf("tlsutil: marshal key: %w", err)
	}
	if err := writePEM(certPath, "CERTIFICATE", k.der); err != nil {
		return err
	}
	return writePEM(keyPath, "EC PRIVATE KEY", keyDER)
}

func writePEM(path, blockType string, data []byte) error {
	out := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: data})
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("tlsutil: write %s: %w", path, err)
	}
	return nil
}
