// Command safewallet inspects and maintains a SAFE wallet database: balances,
// unspent outputs, history, and building or decoding outputs.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/cockroachdb/errors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/bitfsorg/libsafe-go/config"
	"github.com/bitfsorg/libsafe-go/network"
	"github.com/bitfsorg/libsafe-go/store"
	"github.com/bitfsorg/libsafe-go/tx"
	"github.com/bitfsorg/libsafe-go/utxo"
)

type command struct {
	usage     string
	needStore bool
	run       func(a *app, args []string) error
}

var commands = map[string]*command{
	"balance":       {"show spendable and locked balance", true, cmdBalance},
	"utxos":         {"list confirmed owned outputs", true, cmdUtxos},
	"history":       {"list visible transactions", true, cmdHistory},
	"add-tx":        {"store a raw transaction: add-tx HEX [--owned 0,1] [--height H] [--outgoing]", true, cmdAddTx},
	"confirm":       {"record a transaction's block height: confirm TXID HEIGHT", true, cmdConfirm},
	"spend":         {"mark owned outputs spent: spend TXID:VOUT...", true, cmdSpend},
	"forget":        {"delete an invalidated transaction: forget TXID", true, cmdForget},
	"set-tip":       {"record the chain tip height: set-tip HEIGHT", true, cmdSetTip},
	"sync":          {"update tip and confirmations from the node", true, cmdSync},
	"import":        {"fetch and store a transaction: import TXID [--owned 0,1] [--outgoing]", true, cmdImport},
	"watch":         {"sync periodically and print balance changes: watch [--interval 30s]", true, cmdWatch},
	"build":         {"build outputs for a payment: build --to ADDR --amount N [...]", false, cmdBuild},
	"decode-output": {"decode one output: decode-output HEX [--version V]", false, cmdDecodeOutput},
	"decode-tx":     {"decode a raw transaction: decode-tx HEX", false, cmdDecodeTx},
}

// app carries the state shared by commands.
type app struct {
	cfg     config.Config
	net     *config.Network
	log     *zap.SugaredLogger
	out     io.Writer
	store   *store.BoltStore
	builder *tx.Builder
}

func main() {
	fs := flag.CommandLine
	fs.SetInterspersed(false)
	configPath := fs.String("config", "", "configuration file (default <datadir>/config)")
	fs.String(config.KeyDataDir, config.DefaultDataDir(), "wallet data directory")
	fs.String(config.KeyNetwork, config.MainNet.Name, "network: mainnet, testnet or regtest")
	fs.String(config.KeyLogLevel, "info", "log level: debug, info, warn or error")
	fs.String(config.KeyLogFile, "", "log file (default stderr)")
	fs.Uint32(config.KeyConfirmations, config.MainNet.DefaultConfirmations, "confirmations required for incoming outputs")
	fs.String(config.KeySort, tx.SortNone.String(), "output ordering: none or bip69")
	fs.String(config.KeyRPCURL, "", "node JSON-RPC URL (default network preset)")
	fs.String(config.KeyRPCUser, "", "node RPC user")
	fs.String(config.KeyRPCPassword, "", "node RPC password")
	fs.Usage = func() { help(os.Stderr) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		help(os.Stdout)
		os.Exit(0)
	}
	cmd := commands[args[0]]
	if cmd == nil {
		fmt.Fprintln(os.Stderr, "unknown command:", args[0])
		help(os.Stderr)
		os.Exit(1)
	}

	a, err := newApp(fs, *configPath, cmd.needStore)
	if err != nil {
		fatalln("error:", err)
	}
	defer a.close()

	if err := cmd.run(a, args[1:]); err != nil {
		a.close()
		fatalln("error:", err)
	}
}

func newApp(fs *flag.FlagSet, configPath string, needStore bool) (*app, error) {
	if configPath == "" {
		dataDir, _ := fs.GetString(config.KeyDataDir)
		configPath = config.ConfigPath(dataDir)
		if _, err := os.Stat(configPath); err != nil {
			configPath = ""
		}
	}
	cfg, err := config.LoadConfigWithFlags(configPath, fs)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	net, err := config.GetNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	sortType, err := tx.ParseSortType(cfg.Sort)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg: cfg,
		net: net,
		log: log,
		out: os.Stdout,
		builder: tx.NewBuilder(tx.BuilderConfig{
			Encoder: net.AddressEncoder(),
			Sorter:  tx.SorterFor(sortType),
			Log:     log.Named("builder"),
		}),
	}
	if needStore {
		dbPath := config.WalletDBPath(cfg.DataDir)
		if a.store, err = store.OpenBoltStore(dbPath, log.Named("store")); err != nil {
			return nil, errors.Wrapf(err, "open %s", dbPath)
		}
		log.Debugw("opened wallet database", "path", dbPath, "network", net.Name)
	}
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
		a.store = nil
	}
	_ = a.log.Sync()
}

// provider returns a UTXO provider over the wallet database.
func (a *app) provider() (*utxo.Provider, error) {
	return utxo.NewProvider(utxo.ProviderConfig{
		Storage:       a.store,
		Confirmations: a.cfg.Confirmations,
		Log:           a.log.Named("utxo"),
	})
}

// syncer returns a Syncer talking to the configured node.
func (a *app) syncer() (*network.Syncer, error) {
	rpc, err := network.ResolveConfig(network.RPCConfig{
		URL:      a.cfg.RPCURL,
		User:     a.cfg.RPCUser,
		Password: a.cfg.RPCPassword,
	}, a.net.Name)
	if err != nil {
		return nil, err
	}
	return network.NewSyncer(network.NewRPCClient(*rpc), a.store, a.log.Named("sync"))
}

func fatalln(v ...interface{}) {
	fmt.Fprintln(os.Stderr, v...)
	os.Exit(2)
}

func help(w io.Writer) {
	fmt.Fprintln(w, "usage: safewallet [flags] [command] [arguments]")
	fmt.Fprint(w, "\nThe commands are:\n\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "\t%-14s %s\n", name, commands[name].usage)
	}
	fmt.Fprint(w, "\nThe flags are:\n\n")
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
	fmt.Fprintln(w)
}
