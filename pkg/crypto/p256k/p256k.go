// Package p256k implements BIP-340 schnorr signing and verification over
// secp256k1 for nostr events.
package p256k

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/errorf"
)

const (
	// SecKeyLen is the length of a raw secret key.
	SecKeyLen = 32
	// PubKeyLen is the length of an x-only public key.
	PubKeyLen = schnorr.PubKeyBytesLen
	// SigLen is the length of a serialized schnorr signature.
	SigLen = schnorr.SignatureSize
)

// Signer holds a secp256k1 keypair; for verification only the public key
// needs to be initialised.
type Signer struct {
	sk       *btcec.PrivateKey
	pk       *btcec.PublicKey
	skb, pkb []byte
}

// Generate creates a new random keypair.
func (s *Signer) Generate() (err error) {
	if s.sk, err = btcec.NewPrivateKey(); chk.E(err) {
		return
	}
	s.skb = s.sk.Serialize()
	s.pk = s.sk.PubKey()
	s.pkb = schnorr.SerializePubKey(s.pk)
	return
}

// InitSec initialises the Signer from raw secret key bytes.
func (s *Signer) InitSec(sec []byte) (err error) {
	if len(sec) != SecKeyLen {
		err = errorf.E("sec key must be %d bytes, got %d", SecKeyLen, len(sec))
		return
	}
	s.sk, s.pk = btcec.PrivKeyFromBytes(sec)
	s.skb = sec
	s.pkb = schnorr.SerializePubKey(s.pk)
	return
}

// InitPub initialises a verify-only Signer from x-only public key bytes.
func (s *Signer) InitPub(pub []byte) (err error) {
	if s.pk, err = schnorr.ParsePubKey(pub); err != nil {
		return
	}
	s.pkb = pub
	return
}

// Sec returns the raw secret key bytes.
func (s *Signer) Sec() []byte { return s.skb }

// Pub returns the raw BIP-340 x-only public key bytes.
func (s *Signer) Pub() []byte { return s.pkb }

// Sign signs a 32 byte message hash. Requires an initialised secret key.
func (s *Signer) Sign(msg []byte) (sig []byte, err error) {
	if s.sk == nil {
		err = errorf.E("p256k: signer not initialized")
		return
	}
	var si *schnorr.Signature
	if si, err = schnorr.Sign(s.sk, msg); chk.E(err) {
		return
	}
	sig = si.Serialize()
	return
}

// Verify checks a schnorr signature over a 32 byte message hash. Only
// requires the public key to be initialised.
func (s *Signer) Verify(msg, sig []byte) (valid bool, err error) {
	if s.pk == nil {
		err = errorf.E("p256k: pubkey not initialized")
		return
	}
	var si *schnorr.Signature
	if si, err = schnorr.ParseSignature(sig); err != nil {
		return
	}
	valid = si.Verify(msg, s.pk)
	return
}
