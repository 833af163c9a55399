package main

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/cockroachdb/errors"

	"github.com/bitfsorg/libsafe-go/provenance"
)

// parseOutpoint parses TXID:VOUT.
func parseOutpoint(s string) (chainhash.Hash, uint32, error) {
	txIDHex, voutStr, ok := strings.Cut(s, ":")
	if !ok {
		return chainhash.Hash{}, 0, errors.Newf("outpoint %q: want TXID:VOUT", s)
	}
	txID, err := chainhash.NewHashFromHex(txIDHex)
	if err != nil {
		return chainhash.Hash{}, 0, errors.Wrapf(err, "outpoint %q", s)
	}
	vout, err := strconv.ParseUint(voutStr, 10, 32)
	if err != nil {
		return chainhash.Hash{}, 0, errors.Wrapf(err, "outpoint %q", s)
	}
	return *txID, uint32(vout), nil
}

// parsePayload parses ID:HEX, where ID is a decimal or 0x-prefixed byte.
func parsePayload(s string) (byte, []byte, error) {
	idStr, dataHex, ok := strings.Cut(s, ":")
	if !ok {
		return 0, nil, errors.Newf("payload %q: want ID:HEX", s)
	}
	id, err := strconv.ParseUint(idStr, 0, 8)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "payload id %q", idStr)
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "payload %q", s)
	}
	return byte(id), data, nil
}

// tagLabel names the provenance class of tag for display.
func tagLabel(tag []byte) string {
	switch {
	case tag == nil:
		return "-"
	case provenance.IsPlain(tag):
		return "plain"
	case hex.EncodeToString(tag) == provenance.RewardHex:
		return "reward"
	case strings.HasPrefix(hex.EncodeToString(tag), provenance.DenominationPrefixHex):
		return "denomination"
	case len(tag) == 0:
		return "empty"
	}
	return "unrecognized"
}
