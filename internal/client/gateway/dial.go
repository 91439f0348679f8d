package gateway

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"

	"github.com/camadaviva/snaps/internal/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// DialOptions selects transport security for Dial. CAPath is a PEM bundle
// (empty means system roots); SkipTLS dials in plaintext for local development;
// MaxMessageMB bounds message size, zero keeps the grpc defaults.
type DialOptions struct {
	CAPath       string
	SkipTLS      bool
	SkipVerify   bool
	MaxMessageMB int
}

func loadTLS(o DialOptions) (credentials.TransportCredentials, error) {
	if o.SkipTLS {
		return insecure.NewCredentials(), nil
	}
	if o.SkipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if o.CAPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(o.CAPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

// Dial opens a client connection that speaks the JSON codec by default.
func Dial(addr string, o DialOptions) (*grpc.ClientConn, error) {
	creds, err := loadTLS(o)
	if err != nil {
		return nil, err
	}
	callOpts := []grpc.CallOption{grpc.CallContentSubtype(api.CodecName)}
	if o.MaxMessageMB > 0 {
		n := o.MaxMessageMB << 20
		callOpts = append(callOpts, grpc.MaxCallSendMsgSize(n), grpc.MaxCallRecvMsgSize(n))
	}
	return grpc.NewClient(addr,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(callOpts...),
	)
}
