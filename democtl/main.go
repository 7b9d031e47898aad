package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/docopt/docopt-go"
	"golang.org/x/term"

	"stealthlab.org/demo/client"
)

const DemoCtlVersion = "0.0.1"

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	usage := `Demo control.

The default urls are:
    api_url: http://127.0.0.1:5000
    feed_url: ws://127.0.0.1:5000/events

Usage:
    democtl status [--api_url=<api_url>] [--token=<token>]
    democtl switch <scheme> [--api_url=<api_url>] [--token=<token>]
    democtl setup <param_file> [--api_url=<api_url>] [--token=<token>]
    democtl params [--api_url=<api_url>] [--token=<token>]
    democtl keygen [--api_url=<api_url>] [--token=<token>]
    democtl keys [--api_url=<api_url>] [--token=<token>]
    democtl addrgen <key_index> [--api_url=<api_url>] [--token=<token>]
    democtl addresses [--api_url=<api_url>] [--token=<token>]
    democtl dskgen <address_index> <key_index> [--api_url=<api_url>] [--token=<token>]
    democtl dsks [--api_url=<api_url>] [--token=<token>]
    democtl sign <message> [--dsk_index=<dsk_index>]
        [--address_index=<address_index>]
        [--key_index=<key_index>]
        [--api_url=<api_url>] [--token=<token>]
    democtl verify <message> <q_sigma_hex> <h_hex> <address_index>
        [--api_url=<api_url>] [--token=<token>]
    democtl trace <address_index> [--api_url=<api_url>] [--token=<token>]
    democtl recognize <address_index> <key_index> [--full]
        [--api_url=<api_url>] [--token=<token>]
    democtl txs [--api_url=<api_url>] [--token=<token>]
    democtl reset [--all] [--api_url=<api_url>] [--token=<token>]
    democtl perf [--iterations=<iterations>] [--api_url=<api_url>] [--token=<token>]
    democtl panel <operation> [--api_url=<api_url>] [--token=<token>]
    democtl watch [--feed_url=<feed_url>] [--api_url=<api_url>] [--token=<token>]
    democtl token <jwt>

Options:
    -h --help                        Show this screen.
    --version                        Show version.
    --api_url=<api_url>
    --feed_url=<feed_url>
    --token=<token>                  Api bearer token. Use - to prompt.
    --dsk_index=<dsk_index>
    --address_index=<address_index>
    --key_index=<key_index>
    --iterations=<iterations>        Performance test iterations [default: 100].
    --full                           Use full recognition instead of fast.
    --all                            Reset all schemes, not just the active one.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], DemoCtlVersion)
	if err != nil {
		panic(err)
	}

	if status_, _ := opts.Bool("status"); status_ {
		status(opts)
	} else if switch_, _ := opts.Bool("switch"); switch_ {
		switchScheme(opts)
	} else if setup_, _ := opts.Bool("setup"); setup_ {
		setup(opts)
	} else if params_, _ := opts.Bool("params"); params_ {
		params(opts)
	} else if keygen_, _ := opts.Bool("keygen"); keygen_ {
		runPanel(opts, client.OpKeyPanel, map[string]any{})
	} else if keys_, _ := opts.Bool("keys"); keys_ {
		keys(opts)
	} else if addrgen_, _ := opts.Bool("addrgen"); addrgen_ {
		runPanel(opts, client.OpAddressPanel, map[string]any{
			"key_index": argInt(opts, "<key_index>"),
		})
	} else if addresses_, _ := opts.Bool("addresses"); addresses_ {
		addresses(opts)
	} else if dskgen_, _ := opts.Bool("dskgen"); dskgen_ {
		runPanel(opts, client.OpDskPanel, map[string]any{
			"address_index": argInt(opts, "<address_index>"),
			"key_index":     argInt(opts, "<key_index>"),
		})
	} else if dsks_, _ := opts.Bool("dsks"); dsks_ {
		dsks(opts)
	} else if sign_, _ := opts.Bool("sign"); sign_ {
		sign(opts)
	} else if verify_, _ := opts.Bool("verify"); verify_ {
		runPanel(opts, client.OpVerifyPanel, map[string]any{
			"message":       argString(opts, "<message>"),
			"q_sigma_hex":   argString(opts, "<q_sigma_hex>"),
			"h_hex":         argString(opts, "<h_hex>"),
			"address_index": argInt(opts, "<address_index>"),
		})
	} else if trace_, _ := opts.Bool("trace"); trace_ {
		runPanel(opts, client.OpTracePanel, map[string]any{
			"address_index": argInt(opts, "<address_index>"),
		})
	} else if recognize_, _ := opts.Bool("recognize"); recognize_ {
		full, _ := opts.Bool("--full")
		runPanel(opts, client.OpRecognizePanel, map[string]any{
			"address_index": argInt(opts, "<address_index>"),
			"key_index":     argInt(opts, "<key_index>"),
			"fast":          !full,
		})
	} else if txs_, _ := opts.Bool("txs"); txs_ {
		txs(opts)
	} else if reset_, _ := opts.Bool("reset"); reset_ {
		reset(opts)
	} else if perf_, _ := opts.Bool("perf"); perf_ {
		perf(opts)
	} else if panel_, _ := opts.Bool("panel"); panel_ {
		panel(opts)
	} else if watch_, _ := opts.Bool("watch"); watch_ {
		watch(opts)
	} else if token_, _ := opts.Bool("token"); token_ {
		token(opts)
	}
}

func apiUrl(opts docopt.Opts) string {
	if apiUrl, err := opts.String("--api_url"); err == nil && apiUrl != "" {
		return apiUrl
	}
	return "http://127.0.0.1:5000"
}

func feedUrl(opts docopt.Opts) string {
	if feedUrl, err := opts.String("--feed_url"); err == nil && feedUrl != "" {
		return feedUrl
	}
	return "ws://127.0.0.1:5000/events"
}

func authToken(opts docopt.Opts) string {
	token, err := opts.String("--token")
	if err != nil || token == "" {
		return ""
	}
	if token == "-" {
		fmt.Fprint(os.Stderr, "token: ")
		tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			Err.Printf("Could not read token (%s).", err)
			os.Exit(1)
		}
		return string(tokenBytes)
	}
	return token
}

func argString(opts docopt.Opts, name string) string {
	value, _ := opts.String(name)
	return value
}

func argInt(opts docopt.Opts, name string) int {
	value, err := opts.String(name)
	if err != nil {
		return 0
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		Err.Printf("Invalid %s (%s).", name, err)
		os.Exit(1)
	}
	return i
}

func newSession(opts docopt.Opts) *client.Session {
	session := client.NewSession(apiUrl(opts))
	if token := authToken(opts); token != "" {
		session.Api().SetAuthToken(token)
	}
	if err := session.Start(); err != nil {
		Err.Printf("Could not initialize session (%s).", err)
		os.Exit(1)
	}
	return session
}

func printJson(value any) {
	outBytes, err := json.MarshalIndent(value, "", "    ")
	if err != nil {
		Err.Printf("%s", err)
		return
	}
	Out.Printf("%s", outBytes)
}

func status(opts docopt.Opts) {
	session := newSession(opts)
	defer session.Close()

	current, _ := session.Registry().Current()
	printJson(map[string]any{
		"current": current,
		"known":   session.Registry().Known(),
	})
}

func switchScheme(opts docopt.Opts) {
	session := newSession(opts)
	defer session.Close()

	descriptor, err := session.Registry().SwitchScheme(argString(opts, "<scheme>"))
	if err != nil {
		Err.Printf("Switch failed (%s).", err)
		os.Exit(1)
	}
	printJson(descriptor)
}

func setup(opts docopt.Opts) {
	session := newSession(opts)
	defer session.Close()

	result, err := session.Api().SetupSync(&client.SetupArgs{
		ParamFile: argString(opts, "<param_file>"),
	})
	if err != nil {
		Err.Printf("Setup failed (%s).", err)
		os.Exit(1)
	}
	printJson(result)
}

func params(opts docopt.Opts) {
	session := newSession(opts)
	defer session.Close()

	result, err := session.Api().ParamFilesSync()
	if err != nil {
		Err.Printf("%s", err)
		os.Exit(1)
	}
	printJson(result)
}

// run one logical operation through the dispatcher, the way a panel would
func runPanel(opts docopt.Opts, operation string, args map[string]any) {
	session := newSession(opts)
	defer session.Close()

	result, err := session.Run(operation, args)
	if err != nil {
		if err == client.ErrUnsupportedOperation {
			scheme := session.Registry().CurrentId()
			Err.Printf("%s is not supported by scheme %s.", operation, scheme)
		} else {
			Err.Printf("%s failed (%s).", operation, err)
		}
		os.Exit(1)
	}
	printJson(result)
}

func sign(opts docopt.Opts) {
	args := map[string]any{
		"message": argString(opts, "<message>"),
	}
	for _, name := range []string{"--dsk_index", "--address_index", "--key_index"} {
		if value, err := opts.String(name); err == nil && value != "" {
			i, err := strconv.Atoi(value)
			if err != nil {
				Err.Printf("Invalid %s (%s).", name, err)
				os.Exit(1)
			}
			args[name[2:]] = i
		}
	}
	runPanel(opts, client.OpSigningPanel, args)
}

func keys(opts docopt.Opts) {
	session := newSession(opts)
	defer session.Close()

	if err := session.Store().LoadKeys(); err != nil {
		Err.Printf("%s", err)
		os.Exit(1)
	}
	printJson(session.Store().Keys())
}

func addresses(opts docopt.Opts) {
	session := newSession(opts)
	defer session.Close()

	if err := session.Store().LoadAddresses(); err != nil {
		Err.Printf("%s", err)
		os.Exit(1)
	}
	printJson(session.Store().Addresses())
}

func dsks(opts docopt.Opts) {
	session := newSession(opts)
	defer session.Close()

	if err := session.Store().LoadDsks(); err != nil {
		Err.Printf("%s", err)
		os.Exit(1)
	}
	printJson(session.Store().Dsks())
}

func txs(opts docopt.Opts) {
	session := newSession(opts)
	defer session.Close()

	if err := session.Store().LoadTransactions(); err != nil {
		Err.Printf("%s", err)
		os.Exit(1)
	}
	printJson(session.Store().Transactions())
}

func reset(opts docopt.Opts) {
	session := newSession(opts)
	defer session.Close()

	resetAll, _ := opts.Bool("--all")
	result, err := session.Api().ResetSync(&client.ResetArgs{
		ResetAll: resetAll,
	})
	if err != nil {
		Err.Printf("Reset failed (%s).", err)
		os.Exit(1)
	}
	session.Store().Reset(session.Registry().CurrentId())
	printJson(result)
}

func perf(opts docopt.Opts) {
	session := newSession(opts)
	defer session.Close()

	iterations := 100
	if value, err := opts.String("--iterations"); err == nil && value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			iterations = i
		}
	}
	result, err := session.Api().PerformanceTestSync(&client.PerformanceTestArgs{
		Iterations: iterations,
	})
	if err != nil {
		Err.Printf("%s", err)
		os.Exit(1)
	}
	printJson(result)
}

// show how an operation resolves for the active scheme
func panel(opts docopt.Opts) {
	session := newSession(opts)
	defer session.Close()

	operation := argString(opts, "<operation>")
	scheme := session.Registry().CurrentId()
	handler := session.Dispatcher().Resolve(scheme, operation)
	if handler == nil {
		Out.Printf("%s: unsupported for scheme %s", operation, scheme)
		return
	}
	Out.Printf("%s: supported for scheme %s", operation, scheme)
}

func watch(opts docopt.Opts) {
	session := newSession(opts)
	defer session.Close()

	// baseline load first; the bus is only an incremental channel
	session.Store().LoadAll()
	Out.Printf("baseline: %d keys, %d addresses, %d dsks, %d txs",
		len(session.Store().Keys()),
		len(session.Store().Addresses()),
		len(session.Store().Dsks()),
		len(session.Store().Transactions()),
	)

	topics := []string{
		client.TopicKeyUpdated,
		client.TopicAddressUpdated,
		client.TopicDskUpdated,
		client.TopicTxUpdated,
	}
	for _, topic := range topics {
		topic := topic
		unsub := session.Bus().Subscribe(topic, func(payload any) {
			outBytes, err := json.Marshal(payload)
			if err != nil {
				Err.Printf("%s", err)
				return
			}
			Out.Printf("[%s] %s", topic, outBytes)
		})
		defer unsub()
	}

	feed := client.NewEventFeed(session.Ctx(), feedUrl(opts), session.Bus())
	defer feed.Close()
	feed.Run()
}

func token(opts docopt.Opts) {
	apiToken, err := client.ParseApiTokenUnverified(argString(opts, "<jwt>"))
	if err != nil {
		Err.Printf("Invalid token (%s).", err)
		os.Exit(1)
	}
	printJson(apiToken)
}
