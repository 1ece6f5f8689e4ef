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
	"github.com/bitstarkbridge/aframp-backend/internal/offramp"
	"github.com/bitstarkbridge/aframp-backend/internal/scheduler"
	"github.com/bitstarkbridge/aframp-backend/internal/stellarbridge"
	"github.com/bitstarkbridge/aframp-backend/internal/store"
)

// OfframpCommand runs the offramp engine's cycle on a ticker until
// shutdown, the cNGN-in to NGN-out mirror of OnrampCommand.
type OfframpCommand struct{}

func (c *OfframpCommand) Command() *cobra.Command {
	stellarOpts := cmdUtils.StellarBridgeOptions{}
	cycleOpts := cmdUtils.EngineCycleOptions{}
	crashTrackerOptions := crashtracker.CrashTrackerOptions{}
	providerOpts := cmdUtils.PaymentProviderOptions{}
	dbPoolOpts := cmdUtils.DBPoolOptions{}
	notifyOpts := cmdUtils.NotifyOptions{}

	configOpts := config.ConfigOptions{}
	configOpts = append(configOpts, cmdUtils.StellarBridgeConfigOptions(&stellarOpts)...)
	configOpts = append(configOpts, cmdUtils.EngineCycleConfigOptions(&cycleOpts, 10)...)
	configOpts = append(configOpts, cmdUtils.DBPoolConfigOptions(&dbPoolOpts)...)
	configOpts = append(configOpts, cmdUtils.PaymentProviderConfigOptions(&providerOpts)...)
	configOpts = append(configOpts, cmdUtils.CrashTrackerTypeConfigOption(&crashTrackerOptions.CrashTrackerType))
	configOpts = append(configOpts, cmdUtils.NotifyConfigOptions(&notifyOpts)...)

	cmd := &cobra.Command{
		Use:              "offramp",
		Short:            "Run the offramp engine cycle (cNGN-in to NGN-out)",
		PersistentPreRun: cmdUtils.PropagatePersistentPreRun,
		Run: func(cmd *cobra.Command, _ []string) {
			ctx := cmd.Context()

			if err := configOpts.SetValues(); err != nil {
				log.Ctx(ctx).Fatalf("error setting offramp config values: %s", err.Error())
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
			defer pool.Close()

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

			engine := &offramp.Engine{
				Transactions:        store.NewTransactionRepository(pool),
				Gateway:             gateway,
				Providers:           buildProviders(providerOpts),
				HotWalletSecret:     stellarOpts.HotWalletSecret,
				SystemWalletAddr:    stellarOpts.SystemWalletAddr,
				NetworkPassphrase:   stellarOpts.NetworkPassphrase,
				CNGNAssetCode:       providerOpts.CNGNAssetCode,
				CNGNAssetIssuer:     stellarOpts.CNGNAssetIssuer,
				PollInterval:        cycleOpts.PollInterval(),
				BatchSize:           cycleOpts.BatchSize,
				OfframpRetryTimeout: cycleOpts.OfframpRetryTimeout(),
				Notifier:            notifier,
				OperatorEmail:       notifyOpts.OperatorEmail,
			}

			log.Ctx(ctx).Info("Starting offramp engine...")
			scheduler.StartScheduler(crashTrackerClient, scheduler.WithJob(engine))
		},
	}

	if err := configOpts.Init(cmd); err != nil {
		log.Fatalf("error initializing offramp config options: %s", err.Error())
	}

	return cmd
}
