package trafficpush

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/usnistgov/ndn-dpdk/ndn"
	"github.com/usnistgov/ndn-dpdk/ndn/keychain"
)

// MakeSigner resolves a SigningInfo policy into a Signer.
// Recognized policies:
//
//	""            SHA256 digest signing (default identity)
//	"digest"      SHA256 digest signing
//	"null"        null signature
//	"ed25519:/N"  fresh in-memory Ed25519 key for identity /N
//	"ecdsa:/N"    fresh in-memory ECDSA P-256 key for identity /N
//	"rsa:/N"      fresh in-memory RSA-2048 key for identity /N
//	"safebag:FILE[:PASSPHRASE]"  key imported from a base64 SafeBag file
func MakeSigner(input string) (ndn.Signer, error) {
	policy, arg, _ := strings.Cut(input, ":")
	switch policy {
	case "", "digest":
		return ndn.DigestSigning, nil
	case "null":
		return ndn.NullSigner, nil
	case "ed25519":
		pvt, _, e := keychain.NewEd25519KeyPair(identityName(arg))
		return pvt, e
	case "ecdsa":
		key, e := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if e != nil {
			return nil, e
		}
		return keychain.NewECDSAPrivateKey(keychain.ToKeyName(identityName(arg)), key)
	case "rsa":
		key, e := rsa.GenerateKey(rand.Reader, 2048)
		if e != nil {
			return nil, e
		}
		return keychain.NewRSAPrivateKey(keychain.ToKeyName(identityName(arg)), key)
	case "safebag":
		file, passphrase, _ := strings.Cut(arg, ":")
		return importSafeBag(file, passphrase)
	}
	return nil, fmt.Errorf("%w %q", ErrSigningPolicy, input)
}

func identityName(arg string) ndn.Name {
	if arg == "" {
		arg = "/ndn-traffic-push"
	}
	return ndn.ParseName(arg)
}

func importSafeBag(file, passphrase string) (ndn.Signer, error) {
	b64, e := os.ReadFile(file)
	if e != nil {
		return nil, e
	}
	wire := make([]byte, base64.StdEncoding.DecodedLen(len(b64)))
	n, e := base64.StdEncoding.Decode(wire, b64)
	if e != nil {
		return nil, e
	}

	pvt, cert, e := keychain.ImportSafeBag(wire[:n], []byte(passphrase))
	if e != nil {
		return nil, e
	}
	if klc, ok := pvt.(interface {
		WithKeyLocator(klName ndn.Name) ndn.Signer
	}); ok {
		return klc.WithKeyLocator(cert.Name()), nil
	}
	return pvt, nil
}
