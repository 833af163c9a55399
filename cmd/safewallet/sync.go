package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/cockroachdb/errors"
	flag "github.com/spf13/pflag"

	"github.com/bitfsorg/libsafe-go/network"
	"github.com/bitfsorg/libsafe-go/utxo"
)

func cmdSync(a *app, args []string) error {
	if len(args) != 0 {
		return errors.New("sync takes no arguments")
	}
	s, err := a.syncer()
	if err != nil {
		return err
	}
	res, err := s.Sync(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "tip: %d, confirmed: %d, missing: %d\n", res.Tip, res.Confirmed, res.Missing)
	return nil
}

func cmdImport(a *app, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	owned := fs.UintSlice("owned", nil, "positions of outputs paying the wallet")
	outgoing := fs.Bool("outgoing", false, "transaction was created by this wallet")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("import needs one TXID")
	}
	txID, err := chainhash.NewHashFromHex(fs.Arg(0))
	if err != nil {
		return errors.Wrap(err, "txid")
	}
	positions := make([]uint32, 0, len(*owned))
	for _, vout := range *owned {
		positions = append(positions, uint32(vout))
	}

	s, err := a.syncer()
	if err != nil {
		return err
	}
	t, err := s.Import(context.Background(), *txID, positions, *outgoing)
	if err != nil {
		return err
	}
	printOutputs(a, t.Version, t.Outputs)
	return nil
}

func cmdWatch(a *app, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	interval := fs.Duration("interval", 30*time.Second, "sync interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return errors.Wrapf(network.ErrInvalidInterval, "--interval %s", *interval)
	}

	s, err := a.syncer()
	if err != nil {
		return err
	}
	p, err := a.provider()
	if err != nil {
		return err
	}
	monitor := utxo.NewBalanceMonitor(p, utxo.DefaultMonitorInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitorDone := make(chan error, 1)
	go func() { monitorDone <- monitor.Run(ctx) }()
	go func() {
		for bal := range monitor.Events() {
			fmt.Fprintf(a.out, "%s spendable=%d locked=%d total=%d\n",
				time.Now().UTC().Format(time.RFC3339), bal.Spendable, bal.Locked, bal.Total())
		}
	}()

	err = s.Watch(ctx, *interval, func(*network.SyncResult) { monitor.Notify() })
	stop()
	if merr := <-monitorDone; !errors.Is(merr, context.Canceled) {
		return merr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
