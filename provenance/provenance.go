// Package provenance decides which outputs belong to the wallet's visible value set.
//
// Outputs on the chain may carry a provenance tag: opaque bytes classifying the
// economic kind of the output. The wallet only recognizes a fixed set of tags;
// outputs carrying any other tag belong to a sub-protocol this library does not
// support and are hidden from balance, history and coin selection alike.
package provenance

import (
	"bytes"
	"encoding/hex"
)

// Wire-compatible tag literals, hex encoded.
const (
	// PlainHex marks an ordinary value output ("safe" in ASCII).
	PlainHex = "73616665"

	// RewardHex marks a block reward output.
	RewardHex = "7361666573706f730100c2f824c4364195b71a1fcfa0a28ebae20f3501b21b08ae6d6ae8a3bca98ad9d64136e299eba2400183cd0a479e6350ffaec71bcaf0714a024d14183c1407805d75879ea2bf6b691214c372ae21939b96a695c746a6"

	// DenominationPrefixHex starts every denomination-class tag (annotated transfers).
	DenominationPrefixHex = "736166650100c9dcee22bb18bd289bca86e2c8bbb6487089adc9a13d875e538dd35c70a6bea42c0100000a02010012"
)

var (
	plain              = mustDecode(PlainHex)
	reward             = mustDecode(RewardHex)
	denominationPrefix = mustDecode(DenominationPrefixHex)
)

func mustDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("provenance: bad tag literal: " + err.Error())
	}
	return b
}

// Plain returns a fresh copy of the plain marker tag.
func Plain() []byte {
	return bytes.Clone(plain)
}

// IsPlain reports whether tag is exactly the plain marker.
func IsPlain(tag []byte) bool {
	return bytes.Equal(tag, plain)
}

// IsRecognized reports whether an output carrying tag counts toward the
// wallet's visible value. A nil tag is a legacy output and is recognized.
func IsRecognized(tag []byte) bool {
	switch {
	case tag == nil:
		return true
	case bytes.Equal(tag, plain):
		return true
	case bytes.Equal(tag, reward):
		return true
	case bytes.HasPrefix(tag, denominationPrefix):
		return true
	}
	return false
}

// IsRecognizedHex is IsRecognized for a hex encoded tag. An empty string is
// treated as an absent tag; undecodable hex is never recognized.
func IsRecognizedHex(tagHex string) bool {
	if tagHex == "" {
		return true
	}
	tag, err := hex.DecodeString(tagHex)
	if err != nil {
		return false
	}
	return IsRecognized(tag)
}

// TransactionVisible reports whether a transaction whose outputs carry tags
// may appear in the wallet's history: every tag must be recognized.
func TransactionVisible(tags [][]byte) bool {
	for _, tag := range tags {
		if !IsRecognized(tag) {
			return false
		}
	}
	return true
}
