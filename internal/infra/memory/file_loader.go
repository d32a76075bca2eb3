package memory

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"media-choice-service/internal/content"
	"media-choice-service/internal/domain"
)

type questionFile struct {
	Questions []map[string]any `yaml:"questions"`
}

// LoadQuestionFile reads a YAML (or JSON) file of the form `questions: [...]`.
// Every document is schema-checked before it is decoded.
func LoadQuestionFile(path string) (map[string]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question file: %w", err)
	}
	return ParseQuestionFile(data)
}

// ParseQuestionFile is LoadQuestionFile without the file system.
func ParseQuestionFile(data []byte) (map[string]domain.Question, error) {
	var file questionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse question file: %w", err)
	}

	out := make(map[string]domain.Question, len(file.Questions))
	for i, doc := range file.Questions {
		if err := content.Validate(doc); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		var q domain.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		if _, dup := out[q.ID]; dup {
			return nil, fmt.Errorf("question %d: duplicate id %q", i, q.ID)
		}
		out[q.ID] = q
	}
	return out, nil
}

// NewFileQuestionLoader loads a question file once and serves it from memory.
func NewFileQuestionLoader(path string) (*StaticQuestionLoader, error) {
	questions, err := LoadQuestionFile(path)
	if err != nil {
		return nil, err
	}
	return NewStaticQuestionLoader(questions), nil
}
