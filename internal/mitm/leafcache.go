package mitm

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/elazarl/goproxy"

	"playbackbox/internal/perrors"
)

// defaultLeafCacheSize bounds the number of per-host leaf certificates
// held in memory. goproxy.TLSConfigFromCA memoizes unboundedly for the
// life of the process; a long recording session touching many hosts
// would otherwise grow that cache without limit.
const defaultLeafCacheSize = 1000

// leafCache is a bounded, least-recently-used cache of per-host leaf
// certificates signed by the session CA. A cache hit moves the host to
// the back of order; once the cache is full, the host at the front (the
// least recently used one) is dropped to make room for a new one.
type leafCache struct {
	mu       sync.Mutex
	caCert   *x509.Certificate
	caKey    *rsa.PrivateKey
	maxSize  int
	order    []string
	certs    map[string]*tls.Certificate
}

func newLeafCache(ca tls.Certificate, maxSize int) (*leafCache, error) {
	if maxSize <= 0 {
		maxSize = defaultLeafCacheSize
	}
	caCert, err := x509.ParseCertificate(ca.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("parse ca certificate: %w", err)
	}
	caKey, ok := ca.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("ca private key is not RSA")
	}
	return &leafCache{
		caCert:  caCert,
		caKey:   caKey,
		maxSize: maxSize,
		certs:   make(map[string]*tls.Certificate),
	}, nil
}

// tlsConfigFunc returns a goproxy TLSConfigFromCA-compatible generator
// that mints (or reuses) a leaf certificate for the CONNECT host.
func (c *leafCache) tlsConfigFunc() func(host string, ctx *goproxy.ProxyCtx) (*tls.Config, error) {
	return func(host string, ctx *goproxy.ProxyCtx) (*tls.Config, error) {
		name := stripPort(host)
		cert, err := c.get(name)
		if err != nil {
			return nil, fmt.Errorf("mint leaf cert for %s: %w: %w", name, perrors.ErrTLSHandshakeFailed, err)
		}
		return &tls.Config{Certificates: []tls.Certificate{*cert}}, nil
	}
}

func (c *leafCache) get(host string) (*tls.Certificate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cert, ok := c.certs[host]; ok {
		c.touch(host)
		return cert, nil
	}

	cert, err := c.mint(host)
	if err != nil {
		return nil, err
	}

	if len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.certs, oldest)
	}
	c.certs[host] = cert
	c.order = append(c.order, host)
	return cert, nil
}

func (c *leafCache) touch(host string) {
	for i, h := range c.order {
		if h == host {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, host)
			return
		}
	}
}

func (c *leafCache) mint(host string) (*tls.Certificate, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return nil, err
	}
	tpl := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName: host,
		},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	if ip := net.ParseIP(host); ip != nil {
		tpl.IPAddresses = []net.IP{ip}
	} else {
		tpl.DNSNames = []string{host}
	}

	der, err := x509.CreateCertificate(rand.Reader, tpl, c.caCert, &key.PublicKey, c.caKey)
	if err != nil {
		return nil, err
	}

	cert := &tls.Certificate{
		Certificate: [][]byte{der, c.caCert.Raw},
		PrivateKey:  key,
	}
	return cert, nil
}

func stripPort(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return strings.TrimSuffix(hostport, ":")
}
