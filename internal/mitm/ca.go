package mitm

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"playbackbox/internal/perrors"
)

// LoadOrCreateCA loads a persisted CA keypair from dir, generating and
// persisting a fresh one if absent. dir holds ca.pem and ca.key.
func LoadOrCreateCA(dir string) (tls.Certificate, error) {
	certPath := filepath.Join(dir, "ca.pem")
	keyPath := filepath.Join(dir, "ca.key")

	if cert, err := loadCA(certPath, keyPath); err == nil {
		return cert, nil
	}

	certPEM, keyPEM, err := generateCAPEM()
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate ca: %w: %w", perrors.ErrCaCreationFailed, err)
	}
	if err := saveCA(certPath, keyPath, certPEM, keyPEM); err != nil {
		return tls.Certificate{}, fmt.Errorf("save ca: %w: %w", perrors.ErrCaCreationFailed, err)
	}
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("load generated ca keypair: %w: %w", perrors.ErrCaCreationFailed, err)
	}
	return cert, nil
}

// EphemeralCA generates a CA keypair held only in memory, for recording
// sessions that should not persist trust material to disk.
func EphemeralCA() (tls.Certificate, error) {
	certPEM, keyPEM, err := generateCAPEM()
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate ca: %w: %w", perrors.ErrCaCreationFailed, err)
	}
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("load generated ca keypair: %w: %w", perrors.ErrCaCreationFailed, err)
	}
	return cert, nil
}

func generateCAPEM() (certPEM, keyPEM []byte, err error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, err
	}
	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return nil, nil, err
	}
	tpl := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"playbackbox MITM CA"},
			CommonName:   "playbackbox MITM CA",
		},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		IsCA:                  true,
		BasicConstraintsValid: true,
		MaxPathLen:            1,
	}
	der, err := x509.CreateCertificate(rand.Reader, tpl, tpl, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, err
	}
	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})
	return certPEM, keyPEM, nil
}

func loadCA(certPath, keyPath string) (tls.Certificate, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return tls.Certificate{}, err
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return tls.Certificate{}, err
	}
	cb, _ := pem.Decode(certPEM)
	if cb == nil || cb.Type != "CERTIFICATE" {
		return tls.Certificate{}, errors.New("invalid CA cert PEM")
	}
	kb, _ := pem.Decode(keyPEM)
	if kb == nil || kb.Type != "RSA PRIVATE KEY" {
		return tls.Certificate{}, errors.New("invalid CA key PEM")
	}
	return tls.X509KeyPair(certPEM, keyPEM)
}

func saveCA(certPath, keyPath string, certPEM, keyPEM []byte) error {
	if err := os.MkdirAll(filepath.Dir(certPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return err
	}
	return os.WriteFile(keyPath, keyPEM, 0o600)
}
