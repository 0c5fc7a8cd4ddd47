package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"scrappey-go/cmd/scrappey-cli/globals"
	"scrappey-go/internal/components/telemetry"
	"scrappey-go/lib/restyutil"
	"scrappey-go/lib/resultstore"
	"scrappey-go/lib/scrappey"
	oteltelemetry "scrappey-go/lib/telemetry"
	"scrappey-go/lib/util/serviceutil"
	"time"

	"github.com/spf13/cobra"
)

// commands annotated as offline never talk to the api and need no key,
// history only needs the store
const (
	annotationOffline   = "offline"
	annotationStoreOnly = "store-only"
)

var offline = map[string]string{annotationOffline: "true"}
var storeOnly = map[string]string{annotationStoreOnly: "true"}

var (
	configPath  string
	verbose     bool
	flagConfig  Config
	flagTimeout time.Duration
)

var tracing oteltelemetry.Telemetry

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to a config file, defaults to the nearest scrappey.json5.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log every request made to the api.")
	flags.StringVar(&flagConfig.ApiKey, "api-key", "", "The api key, overrides $"+envApiKey+".")
	flags.StringVar(&flagConfig.BaseUrl, "base-url", "", "The api endpoint, overrides $"+envBaseUrl+".")
	flags.DurationVar(&flagTimeout, "timeout", 0, "How long to wait for the api to answer a single command.")
	flags.Float64Var(&flagConfig.RequestsPerSecond, "rps", 0, "Limit how many commands are sent per second.")
	flags.StringVar(&flagConfig.Db, "db", "", "A sqlite file or libsql url to record every exchange to.")
	flags.StringVar(&flagConfig.Dump, "dump", "", "A directory to write every raw http exchange to.")
}

var rootCmd = &cobra.Command{
	Use:   "scrappey-cli",
	Short: "scrappey-cli sends commands to the scrappey web scraping api.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		if cmd.Annotations[annotationOffline] != "" {
			return
		}

		file, err := readConfigFile(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if cmd.Flags().Changed("timeout") {
			flagConfig.TimeoutSeconds, err = timeoutSeconds(flagTimeout)
			if err != nil {
				serviceutil.Fatal("invalid --timeout", err)
			}
		}
		config, err := resolveConfig(file, os.LookupEnv, flagConfig)
		if err != nil {
			serviceutil.Fatal("failed to resolve config", err)
		}

		tracing, err = oteltelemetry.Setup(cmd.Context(), "scrappey-cli", config.Telemetry)
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
		if tracing.MeterProvider != nil {
			oteltelemetry.InstrumentPerfStats(cmd.Context(), 5*time.Second)
		}

		value, err := connect(config, cmd.Annotations[annotationStoreOnly] == "")
		if err != nil {
			serviceutil.Fatal("failed to setup client", err)
		}
		cmd.SetContext(globals.Set(cmd.Context(), value))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		value := globals.Get(cmd.Context())
		if value.Store != nil {
			value.Store.Close()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tracing.Shutdown(ctx)
	},
}

func connect(config Config, withClient bool) (*globals.Value, error) {
	value := &globals.Value{}
	if config.Db != "" {
		store, err := resultstore.Open(config.Db)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		value.Store = &store
	}
	if !withClient {
		return value, nil
	}

	opts := scrappey.ClientOptions{
		ApiKey:            config.ApiKey,
		BaseUrl:           config.BaseUrl,
		Timeout:           config.Timeout(),
		RequestsPerSecond: config.RequestsPerSecond,
		Telemetry:         telemetry.SlogAPI{},
	}
	if config.Dump != "" {
		output, err := restyutil.NewFilesystemOutput(config.Dump)
		if err != nil {
			return nil, err
		}
		opts.DumpOutput = output
	}

	client, err := scrappey.NewClient(opts)
	if err != nil {
		if errors.Is(err, scrappey.ErrMissingApiKey) {
			return nil, fmt.Errorf("%w, pass --api-key, set $%s or api_key in %s", err, envApiKey, configFileName)
		}
		return nil, err
	}
	value.Client = client
	return value, nil
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
