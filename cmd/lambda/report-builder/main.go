// Report Builder Lambda entry point, triggered by dataset uploads to S3
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"hotel-comparables-engine/internal/handlers"
	"hotel-comparables-engine/internal/utils"
)

func main() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	_ = utils.InitLogger(level)
	defer utils.Sync()

	handler, err := handlers.NewReportProcessorHandler(context.Background())
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}

	lambda.Start(handler.Handle)
}
