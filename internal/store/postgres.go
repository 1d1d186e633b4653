package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/insurancebot/internal/domain"
)

const (
	selectTranscriptSQL = `SELECT transcript FROM conversations WHERE chat_id = $1`
	selectStepSQL       = `SELECT step FROM conversations WHERE chat_id = $1`

	appendTurnSQL = `
INSERT INTO conversations (chat_id, transcript, step)
VALUES ($1, $2, 1)
ON CONFLICT (chat_id) DO UPDATE
SET transcript = conversations.transcript || EXCLUDED.transcript,
    updated_at = now()`

	setStepSQL = `
INSERT INTO conversations (chat_id, step)
VALUES ($1, $2)
ON CONFLICT (chat_id) DO UPDATE
SET step = EXCLUDED.step,
    updated_at = now()`
)

var documentSQL = map[domain.DocumentKind]struct{ get, set string }{
	domain.Passport: {
		get: `SELECT passport_data FROM conversations WHERE chat_id = $1`,
		set: `
INSERT INTO conversations (chat_id, passport_data)
VALUES ($1, $2::jsonb)
ON CONFLICT (chat_id) DO UPDATE
SET passport_data = EXCLUDED.passport_data,
    updated_at = now()`,
	},
	domain.Vehicle: {
		get: `SELECT vehicle_data FROM conversations WHERE chat_id = $1`,
		set: `
INSERT INTO conversations (chat_id, vehicle_data)
VALUES ($1, $2::jsonb)
ON CONFLICT (chat_id) DO UPDATE
SET vehicle_data = EXCLUDED.vehicle_data,
    updated_at = now()`,
	},
}

// Postgres stores conversation records in the conversations table.
// Each write is a single upsert statement, so concurrent first writes for one chat cannot create duplicates.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open connection pool. Migrations must already be applied.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

var _ Store = (*Postgres)(nil)

func (p *Postgres) Transcript(ctx context.Context, chatID string) (string, error) {
	var transcript string
	err := p.db.GetContext(ctx, &transcript, selectTranscriptSQL, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", wrap("get_transcript", err)
	}
	return transcript, nil
}

func (p *Postgres) TrimmedTranscript(ctx context.Context, chatID string, maxChars int) (string, error) {
	raw, err := p.Transcript(ctx, chatID)
	if err != nil {
		return "", err
	}
	return TrimTranscript(raw, maxChars), nil
}

func (p *Postgres) AppendTurn(ctx context.Context, chatID, userText, botText string) error {
	_, err := p.db.ExecContext(ctx, appendTurnSQL, chatID, FormatTurn(userText, botText))
	return wrap("append_turn", err)
}

func (p *Postgres) Step(ctx context.Context, chatID string) (domain.Step, error) {
	var step int
	err := p.db.GetContext(ctx, &step, selectStepSQL, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StepNotStarted, nil
	}
	if err != nil {
		return domain.StepNotStarted, wrap("get_step", err)
	}
	return domain.Step(step), nil
}

func (p *Postgres) SetStep(ctx context.Context, chatID string, step domain.Step) error {
	if err := validateStep(step); err != nil {
		return wrap("set_step", err)
	}
	_, err := p.db.ExecContext(ctx, setStepSQL, chatID, int(step))
	return wrap("set_step", err)
}

func (p *Postgres) Document(ctx context.Context, chatID string, kind domain.DocumentKind) (domain.Document, error) {
	if err := validateKind(kind); err != nil {
		return domain.Document{}, wrap("get_document", err)
	}
	var raw []byte
	err := p.db.GetContext(ctx, &raw, documentSQL[kind].get, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Document{}, nil
	}
	if err != nil {
		return domain.Document{}, wrap("get_document", err)
	}
	return decodeDocument(raw)
}

func (p *Postgres) SetDocument(ctx context.Context, chatID string, kind domain.DocumentKind, doc domain.Document) error {
	if err := validateKind(kind); err != nil {
		return wrap("set_document", err)
	}
	payload, err := sonic.Marshal(doc)
	if err != nil {
		return wrap("set_document", err)
	}
	_, err = p.db.ExecContext(ctx, documentSQL[kind].set, chatID, string(payload))
	return wrap("set_document", err)
}

func (p *Postgres) Ping(ctx context.Context) error {
	return wrap("ping", p.db.PingContext(ctx))
}

func decodeDocument(raw []byte) (domain.Document, error) {
	var doc domain.Document
	if len(raw) == 0 {
		return doc, nil
	}
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return domain.Document{}, wrap("decode_document", err)
	}
	return doc, nil
}
