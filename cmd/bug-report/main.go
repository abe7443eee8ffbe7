// Command bug-report is the bug report endpoint as an AWS Lambda
// function behind API Gateway.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/redoublet/formrelay/internal/api"
	"github.com/redoublet/formrelay/internal/app"
	"github.com/redoublet/formrelay/internal/config"
	"github.com/redoublet/formrelay/internal/lambdaproxy"
)

func main() {
	cfg, err := config.LoadFromEnv(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	handlers, err := app.Setup(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize relay: %v", err)
	}

	router := api.NewRouter(api.Routes{
		BugReport: handlers.BugReport,
		Default:   handlers.BugReport,
	}, api.Options{MaxBodyBytes: cfg.Server.MaxBodyBytes})

	lambda.Start(lambdaproxy.New(router).Handle)
}
