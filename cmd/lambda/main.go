package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/dmitrijs2005/trainspotter/internal/app"
)

func main() {

	ctx := context.Background()
	a, err := app.NewApp(ctx)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	lambda.Start(a.Handler())
}
