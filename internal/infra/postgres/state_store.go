package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"media-choice-service/internal/choice"
	"media-choice-service/internal/domain"
)

// OpenBun opens a bun handle over the pgdriver connector.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

type answerStateRow struct {
	bun.BaseModel `bun:"table:answer_states"`

	QuestionID string    `bun:"question_id,pk"`
	LearnerID  string    `bun:"learner_id,pk"`
	Answers    string    `bun:"answers,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID   string `bun:"id,pk"`
	Data string `bun:"data,type:jsonb,notnull"`
}

// StateStore persists saved answers in answer_states, one row per learner and question.
type StateStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewStateStore(db *bun.DB) *StateStore {
	return &StateStore{db: db, now: time.Now}
}

func (s *StateStore) SaveState(ctx context.Context, questionID, learnerID string, state domain.State) error {
	row := &answerStateRow{
		QuestionID: questionID,
		LearnerID:  learnerID,
		Answers:    choice.FormatIndexes(state.Answers),
		UpdatedAt:  s.now(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (question_id, learner_id) DO UPDATE").
		Set("answers = EXCLUDED.answers").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *StateStore) LoadState(ctx context.Context, questionID, learnerID string) (domain.State, bool, error) {
	row := new(answerStateRow)
	err := s.db.NewSelect().
		Model(row).
		Where("question_id = ?", questionID).
		Where("learner_id = ?", learnerID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.State{}, false, nil
	}
	if err != nil {
		return domain.State{}, false, fmt.Errorf("load state: %w", err)
	}
	answers, err := choice.ParseIndexes(row.Answers)
	if err != nil {
		return domain.State{}, false, err
	}
	return domain.State{Answers: answers}, true, nil
}

func (s *StateStore) DeleteState(ctx context.Context, questionID, learnerID string) error {
	_, err := s.db.NewDelete().
		Model((*answerStateRow)(nil)).
		Where("question_id = ?", questionID).
		Where("learner_id = ?", learnerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}

// UpsertQuestion writes authored content into the questions table.
func UpsertQuestion(ctx context.Context, db bun.IDB, q domain.Question) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	row := &questionRow{ID: q.ID, Data: string(data)}
	_, err = db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert question %s: %w", q.ID, err)
	}
	return nil
}
