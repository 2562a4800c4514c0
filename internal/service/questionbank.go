package service

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/twoofus/server/internal/markdown"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/repository"
)

// SyncResult counts questions written by QuestionBankService.Sync.
type SyncResult struct {
	Added    int `json:"added"`
	Existing int `json:"existing"`
}

// QuestionBankService reads the question pool from markdown files. Each file
// sets a category in its front matter; every list item is one question.
type QuestionBankService struct {
	parser    *markdown.Parser
	fsys      fs.FS
	dir       string
	questions repository.QuestionRepository
}

func NewQuestionBankService(fsys fs.FS, dir string, questions repository.QuestionRepository) *QuestionBankService {
	return &QuestionBankService{
		parser:    markdown.NewParser(),
		fsys:      fsys,
		dir:       dir,
		questions: questions,
	}
}

func (s *QuestionBankService) Load() ([]*model.Question, error) {
	files, err := fs.Glob(s.fsys, path.Join(s.dir, "*.md"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	seen := make(map[string]bool)
	var questions []*model.Question
	for _, file := range files {
		content, err := fs.ReadFile(s.fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		items, meta, err := s.parser.ListItems(content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}

		category, ok := meta["category"].(string)
		if !ok || category == "" {
			category = strings.TrimSuffix(path.Base(file), ".md")
		}

		for _, text := range items {
			if seen[text] {
				slog.Warn("duplicate question skipped", "file", file, "text", text)
				continue
			}
			seen[text] = true
			questions = append(questions, &model.Question{Text: text, Category: category})
		}
	}

	return questions, nil
}

// Sync inserts questions missing from the database. Existing rows are never
// changed because daily questions reference them.
func (s *QuestionBankService) Sync(ctx context.Context) (SyncResult, error) {
	var result SyncResult

	questions, err := s.Load()
	if err != nil {
		return result, err
	}

	for _, q := range questions {
		added, err := s.questions.Insert(ctx, q)
		if err != nil {
			return result, fmt.Errorf("failed to insert question %q: %w", q.Text, err)
		}
		if added {
			result.Added++
		} else {
			result.Existing++
		}
	}

	slog.Info("question bank synced", "added", result.Added, "existing", result.Existing)
	return result, nil
}
