package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/cockroachdb/errors"
	flag "github.com/spf13/pflag"

	"github.com/bitfsorg/libsafe-go/store"
	"github.com/bitfsorg/libsafe-go/tx"
	"github.com/bitfsorg/libsafe-go/utxo"
)

func cmdBalance(a *app, args []string) error {
	if len(args) != 0 {
		return errors.New("balance takes no arguments")
	}
	p, err := a.provider()
	if err != nil {
		return err
	}
	c, err := p.Classify()
	if err != nil {
		return err
	}
	bal := c.Balance()
	fmt.Fprintf(a.out, "tip:       %d\n", c.Tip)
	fmt.Fprintf(a.out, "spendable: %d\n", bal.Spendable)
	fmt.Fprintf(a.out, "locked:    %d\n", bal.Locked)
	fmt.Fprintf(a.out, "total:     %d\n", bal.Total())
	return nil
}

func cmdUtxos(a *app, args []string) error {
	if len(args) != 0 {
		return errors.New("utxos takes no arguments")
	}
	p, err := a.provider()
	if err != nil {
		return err
	}
	c, err := p.Classify()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OUTPOINT\tVALUE\tSTATE\tLOCK\tTAG\tADDRESS")
	list := func(state string, outs []*utxo.OwnedOutput) {
		for _, o := range outs {
			fmt.Fprintf(w, "%s:%d\t%d\t%s\t%d\t%s\t%s\n",
				o.TxID, o.Output.Index, o.Value(), state, o.Output.LockHeight(),
				tagLabel(o.Output.ProvenanceTag), a.net.AddressEncoder().AddressOf(o.Output.LockingScript))
		}
	}
	list("spendable", c.Spendable)
	list("locked", c.Locked)
	return w.Flush()
}

func cmdHistory(a *app, args []string) error {
	if len(args) != 0 {
		return errors.New("history takes no arguments")
	}
	p, err := a.provider()
	if err != nil {
		return err
	}
	txs, err := p.History(a.store)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTXID\tDIRECTION\tHEIGHT\tOWNED")
	for _, t := range txs {
		dir := "in"
		if t.Outgoing {
			dir = "out"
		}
		height := "-"
		if t.BlockHeight != nil {
			height = strconv.FormatUint(uint64(*t.BlockHeight), 10)
		}
		var owned uint64
		for _, vout := range t.Owned {
			owned += t.Outputs[vout].Value
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			time.Unix(t.Timestamp, 0).UTC().Format(time.RFC3339), t.TxID, dir, height, owned)
	}
	return w.Flush()
}

func cmdAddTx(a *app, args []string) error {
	fs := flag.NewFlagSet("add-tx", flag.ContinueOnError)
	owned := fs.UintSlice("owned", nil, "positions of outputs paying the wallet")
	height := fs.Int64("height", -1, "block height, -1 when unconfirmed")
	outgoing := fs.Bool("outgoing", false, "transaction was created by this wallet")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("add-tx needs one raw transaction")
	}

	raw, err := hex.DecodeString(fs.Arg(0))
	if err != nil {
		return errors.Wrap(err, "raw transaction hex")
	}
	parsed, err := tx.ParseTransaction(raw)
	if err != nil {
		return err
	}

	t := &utxo.Transaction{
		TxID:      parsed.TxID(),
		Version:   parsed.Version,
		Outgoing:  *outgoing,
		Timestamp: time.Now().Unix(),
		Outputs:   parsed.Outputs,
	}
	if *height >= 0 {
		h := uint32(*height)
		t.BlockHeight = &h
	}
	for _, vout := range *owned {
		t.Owned = append(t.Owned, uint32(vout))
	}
	consumed, err := store.RecordTransaction(a.store, t, parsed.Inputs)
	if err != nil {
		return err
	}
	a.log.Debugw("recorded transaction", "txid", t.TxID.String(), "consumed", consumed)
	fmt.Fprintln(a.out, t.TxID)
	return nil
}

func cmdConfirm(a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("confirm needs TXID HEIGHT")
	}
	txID, err := chainhash.NewHashFromHex(args[0])
	if err != nil {
		return errors.Wrap(err, "txid")
	}
	height, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return errors.Wrap(err, "height")
	}
	return a.store.ConfirmTransaction(*txID, uint32(height))
}

func cmdSpend(a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("spend needs at least one TXID:VOUT")
	}
	for _, arg := range args {
		txID, vout, err := parseOutpoint(arg)
		if err != nil {
			return err
		}
		if err := a.store.MarkSpent(txID, vout); err != nil {
			return err
		}
	}
	return nil
}

func cmdForget(a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("forget needs one TXID")
	}
	txID, err := chainhash.NewHashFromHex(args[0])
	if err != nil {
		return errors.Wrap(err, "txid")
	}
	return a.store.DeleteTransaction(*txID)
}

func cmdSetTip(a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("set-tip needs one HEIGHT")
	}
	height, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return errors.Wrap(err, "height")
	}
	return a.store.SetTip(uint32(height))
}

func cmdBuild(a *app, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	to := fs.String("to", "", "recipient address")
	amount := fs.Uint64("amount", 0, "recipient value")
	change := fs.String("change", "", "change address")
	changeAmount := fs.Uint64("change-amount", 0, "change value")
	lock := fs.Int64("lock", -1, "spend lock height for recipient outputs")
	tag := fs.String("tag", "", "provenance tag request, hex or vesting JSON")
	vesting := fs.String("vesting", "", "vesting schedule JSON")
	data := fs.StringArray("data", nil, "extension payload ID:HEX, repeatable")
	version := fs.Uint32("version", tx.DefaultTxVersion, "transaction version without extension fields")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d := tx.NewDraft()
	d.Version = *version
	d.SetRecipient(*to, *amount)
	if *change != "" {
		d.SetChange(*change, *changeAmount)
	}
	if *lock >= 0 {
		d.SetSpendLock(uint64(*lock))
	}
	d.TagRequest = *tag
	if *vesting != "" {
		s, err := tx.ParseVestingSchedule(*vesting)
		if err != nil {
			return err
		}
		if err := d.SetVesting(s); err != nil {
			return err
		}
	}
	for _, p := range *data {
		id, payload, err := parsePayload(p)
		if err != nil {
			return err
		}
		d.AddExtensionPayload(id, payload)
	}

	built, err := a.builder.Build(d)
	if err != nil {
		return err
	}
	printOutputs(a, built.Version, built.Outputs)
	fmt.Fprintf(a.out, "\nextension data: %d bytes\ntx: %s\n", d.ExtensionDataSize(), hex.EncodeToString(built.Bytes()))
	return nil
}

func cmdDecodeOutput(a *app, args []string) error {
	fs := flag.NewFlagSet("decode-output", flag.ContinueOnError)
	version := fs.Uint32("version", tx.ExtensionTxVersion, "version of the enclosing transaction")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("decode-output needs one output hex")
	}
	raw, err := hex.DecodeString(fs.Arg(0))
	if err != nil {
		return errors.Wrap(err, "output hex")
	}

	r := tx.NewReader(raw)
	o, err := tx.DecodeOutputVersioned(r, 0, *version)
	if err != nil {
		return err
	}
	if r.Len() != 0 {
		return errors.Wrapf(tx.ErrMalformed, "%d unread bytes", r.Len())
	}
	printOutputs(a, *version, []*tx.Output{o})
	return nil
}

func cmdDecodeTx(a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("decode-tx needs one raw transaction")
	}
	raw, err := hex.DecodeString(args[0])
	if err != nil {
		return errors.Wrap(err, "raw transaction hex")
	}
	t, err := tx.ParseTransaction(raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "txid: %s\nlocktime: %d\n", t.TxID(), t.LockTime)
	for i, in := range t.Inputs {
		fmt.Fprintf(a.out, "input %d: %s:%d\n", i, in.SourceTXID, in.SourceTxOutIndex)
	}
	printOutputs(a, t.Version, t.Outputs)
	return nil
}

func printOutputs(a *app, version uint32, outs []*tx.Output) {
	fmt.Fprintf(a.out, "version: %d\n", version)
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tVALUE\tLOCK\tTAG\tADDRESS\tSCRIPT")
	for _, o := range outs {
		lock := "-"
		if o.SpendLockHeight != nil {
			lock = strconv.FormatUint(*o.SpendLockHeight, 10)
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%x\n",
			o.Index, o.Value, lock, tagLabel(o.ProvenanceTag),
			a.net.AddressEncoder().AddressOf(o.LockingScript), o.ScriptBytes())
	}
	_ = w.Flush()
}
