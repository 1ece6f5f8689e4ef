package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/stellar/go/support/log"

	"github.com/bitstarkbridge/aframp-backend/cmd"
)

// Version is the official version of this application. Whenever it's
// changed here, it also needs to be updated wherever the image is tagged
// for release.
const Version = "0.1.0"

// GitCommit is populated at build time by
// go build -ldflags "-X main.GitCommit=$GIT_COMMIT"
var GitCommit string

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found")
	}

	preConfigureLogger()

	rootCmd := cmd.SetupCLI(Version, GitCommit)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error executing aframp-backend: %s", err.Error())
	}
}

// preConfigureLogger sets the log level to Trace so logs work from the
// start. cmd/root.go's PersistentPreRun overwrites this with the
// configured --log-level once flags are parsed.
func preConfigureLogger() {
	log.DefaultLogger = log.New()
	log.DefaultLogger.SetLevel(logrus.TraceLevel)
}
