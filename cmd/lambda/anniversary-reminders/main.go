package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/twoofus/server/internal/function"
	"github.com/twoofus/server/internal/jobs"
)

func main() {
	fn := function.Job(jobs.AnniversaryReminders, function.FromEnv("anniversary-reminders"))
	lambda.Start(fn.Handle)
}
