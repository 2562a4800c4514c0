package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/twoofus/server/internal/function"
	"github.com/twoofus/server/internal/jobs"
)

func main() {
	fn := function.Job(jobs.AssignDailyQuestion, function.FromEnv("assign-daily-question"))
	lambda.Start(fn.Handle)
}
