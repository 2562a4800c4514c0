package twoofus

import "embed"

// QuestionsFS contains the daily question bank.
// Run "go run ./cmd/twoofus questions sync" after editing.
//
//go:embed content/questions/*.md
var QuestionsFS embed.FS
