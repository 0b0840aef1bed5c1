package polaris

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
)

// PeerIdentity is a pseudonymous client identity derived from a
// self-signed certificate. Its presence means the certificate was
// structurally self-consistent (its signature verifies against its
// own key); it says nothing about chains of trust. Whether the
// fingerprint is authorized for anything is the handler's decision.
type PeerIdentity struct {
	// Fingerprint is the lowercase hex SHA-256 of the DER bytes. It
	// is stable across connections presenting the same certificate,
	// making it usable as a durable key.
	Fingerprint string

	// CommonName is the subject common name as asserted by the
	// client. Not an authenticated fact.
	CommonName string

	// Subject is the full subject string of the certificate.
	Subject string
}

// IdentityFromDER derives an identity from raw certificate bytes.
// Empty input yields (nil, nil): no certificate, no identity. A
// certificate that fails to parse or whose signature does not verify
// against its own public key yields nil with ErrCertMalformed; the
// caller logs it and carries on without an identity.
func IdentityFromDER(der []byte) (*PeerIdentity, error) {
	if len(der) == 0 {
		return nil, nil
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertMalformed, err)
	}
	if err := cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature); err != nil {
		return nil, fmt.Errorf("%w: self-signature check failed: %v", ErrCertMalformed, err)
	}
	sum := sha256.Sum256(der)
	return &PeerIdentity{
		Fingerprint: hex.EncodeToString(sum[:]),
		CommonName:  cert.Subject.CommonName,
		Subject:     cert.Subject.String(),
	}, nil
}
