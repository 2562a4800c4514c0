package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/twoofus/server/internal/function"
)

func main() {
	fn := function.Notify(function.FromEnv("send-notification"))
	lambda.Start(fn.Handle)
}
