package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/support/config"
	"github.com/stellar/go/support/log"

	cmdUtils "github.com/bitstarkbridge/aframp-backend/cmd/utils"
	"github.com/bitstarkbridge/aframp-backend/db"
	"github.com/bitstarkbridge/aframp-backend/internal/crashtracker"
	"github.com/bitstarkbridge/aframp-backend/internal/events"
	"github.com/bitstarkbridge/aframp-backend/internal/onramp"
	"github.com/bitstarkbridge/aframp-backend/internal/serve"
	"github.com/bitstarkbridge/aframp-backend/internal/stellarbridge"
	"github.com/bitstarkbridge/aframp-backend/internal/store"
	"github.com/bitstarkbridge/aframp-backend/internal/webhook"
)

// ServeCommand runs the API process: quote issuance, transaction
// creation/status, and inbound provider webhooks. It never drives the
// processor loops itself (see OnrampCommand/OfframpCommand) but a
// webhook delivery does call directly into onramp.Engine's
// payment-confirmed path, the same call the onramp cycle's poll
// fallback would eventually make on its own.
type ServeCommand struct{}

func (c *ServeCommand) Command() *cobra.Command {
	stellarOpts := cmdUtils.StellarBridgeOptions{}
	httpOpts := cmdUtils.HTTPServerOptions{}
	providerOpts := cmdUtils.PaymentProviderOptions{}
	webhookOpts := cmdUtils.WebhookOptions{}
	dbPoolOpts := cmdUtils.DBPoolOptions{}
	crashTrackerOptions := crashtracker.CrashTrackerOptions{}
	notifyOpts := cmdUtils.NotifyOptions{}

	configOpts := config.ConfigOptions{}
	configOpts = append(configOpts, cmdUtils.StellarBridgeConfigOptions(&stellarOpts)...)
	configOpts = append(configOpts, cmdUtils.HTTPServerConfigOptions(&httpOpts)...)
	configOpts = append(configOpts, cmdUtils.DBPoolConfigOptions(&dbPoolOpts)...)
	configOpts = append(configOpts, cmdUtils.PaymentProviderConfigOptions(&providerOpts)...)
	configOpts = append(configOpts, cmdUtils.WebhookConfigOptions(&webhookOpts)...)
	configOpts = append(configOpts, cmdUtils.CrashTrackerTypeConfigOption(&crashTrackerOptions.CrashTrackerType))
	configOpts = append(configOpts, cmdUtils.NotifyConfigOptions(&notifyOpts)...)

	cmd := &cobra.Command{
		Use:              "serve",
		Short:            "Run the aframp API server",
		PersistentPreRun: cmdUtils.PropagatePersistentPreRun,
		Run: func(cmd *cobra.Command, _ []string) {
			ctx := cmd.Context()

			if err := configOpts.SetValues(); err != nil {
				log.Ctx(ctx).Fatalf("error setting serve config values: %s", err.Error())
			}
			globalOptions.populateCrashTrackerOptions(&crashTrackerOptions)

			pool, err := db.OpenDBConnectionPoolWithConfig(globalOptions.databaseURL, db.DBPoolConfig{
				MaxOpenConns:    dbPoolOpts.DBMaxOpenConns,
				MaxIdleConns:    dbPoolOpts.DBMaxIdleConns,
				ConnMaxIdleTime: time.Duration(dbPoolOpts.DBConnMaxIdleTimeSeconds) * time.Second,
				ConnMaxLifetime: time.Duration(dbPoolOpts.DBConnMaxLifetimeSeconds) * time.Second,
			})
			if err != nil {
				log.Ctx(ctx).Fatalf("error opening DB connection pool: %s", err.Error())
			}

			crashTrackerClient, err := crashtracker.GetClient(ctx, crashTrackerOptions)
			if err != nil {
				log.Ctx(ctx).Fatalf("error creating crash tracker client: %s", err.Error())
			}

			notifier, err := cmdUtils.BuildNotifier(notifyOpts)
			if err != nil {
				log.Ctx(ctx).Fatalf("error creating notification client: %s", err.Error())
			}

			horizonClient := &horizonclient.Client{HorizonURL: stellarOpts.HorizonURL}
			gateway := stellarbridge.NewHorizonGateway(horizonClient)

			onrampEngine := &onramp.Engine{
				Transactions:      store.NewTransactionRepository(pool),
				Gateway:           gateway,
				Providers:         buildProviders(providerOpts),
				HotWalletSecret:   stellarOpts.HotWalletSecret,
				SystemWalletAddr:  stellarOpts.SystemWalletAddr,
				NetworkPassphrase: stellarOpts.NetworkPassphrase,
				CNGNAssetCode:     providerOpts.CNGNAssetCode,
				CNGNAssetIssuer:   stellarOpts.CNGNAssetIssuer,
				Notifier:          notifier,
				OperatorEmail:     notifyOpts.OperatorEmail,
			}

			ingester := &webhook.Ingester{
				WebhookEvents: store.NewWebhookEventRepository(pool),
				Transactions:  store.NewTransactionRepository(pool),
				Onramp:        onrampEngine,
				Secrets: map[string]string{
					"flutterwave": webhookOpts.FlutterwaveSecret,
					"paystack":    webhookOpts.PaystackSecret,
					"mpesa":       webhookOpts.MpesaSecret,
				},
				Producer: events.NoopProducer{},
			}

			serveOpts := serve.ServeOptions{
				Environment:        globalOptions.environment,
				GitCommit:          globalOptions.gitCommit,
				Version:            globalOptions.version,
				Port:               httpOpts.Port,
				CorsAllowedOrigins: httpOpts.CorsAllowedOrigins,
				DBConnectionPool:   pool,
				QuoteCacheSize:     httpOpts.QuoteCacheSize,
				CrashTrackerClient: crashTrackerClient,
				WebhookIngester:    ingester,
			}

			log.Ctx(ctx).Info("Starting aframp API server...")
			if err := serve.Serve(serveOpts, &serve.HTTPServer{}); err != nil {
				log.Ctx(ctx).Fatalf("error running serve command: %s", err.Error())
			}
		},
	}

	if err := configOpts.Init(cmd); err != nil {
		log.Fatalf("error initializing serve config options: %s", err.Error())
	}

	return cmd
}
