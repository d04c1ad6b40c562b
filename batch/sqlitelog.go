package batch

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Verificação de interface em tempo de compilação.
var _ QueryLog = (*SQLiteLog)(nil)

// SQLiteLog grava o log de consultas em um arquivo SQLite local. Serve para
// execuções de teste/desenvolvimento do lote, quando não se quer escrever no
// log_consultas_api de produção.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLiteLog abre (ou cria) o banco no caminho dado e inicializa o schema.
// Use ":memory:" para um banco efêmero.
func NewSQLiteLog(dsn string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrindo sqlite: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS log_consultas (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			admin_id          TEXT,
			produto_id        TEXT,
			ean_gtin          TEXT NOT NULL,
			sucesso           INTEGER NOT NULL,
			tempo_resposta_ms INTEGER,
			resposta_api      TEXT,
			erro_mensagem     TEXT,
			created_at        TEXT NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("criando tabela log_consultas: %w", err)
	}

	return &SQLiteLog{db: db}, nil
}

// Append implementa QueryLog.
func (l *SQLiteLog) Append(ctx context.Context, e LogEntry) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO log_consultas
			(admin_id, produto_id, ean_gtin, sucesso, tempo_resposta_ms, resposta_api, erro_mensagem, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.AdminID, e.ProductID, e.GTIN, boolToInt(e.Success), e.ElapsedMS,
		string(e.Response), e.ErrorMsg, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserindo log de %s: %w", e.GTIN, err)
	}
	return nil
}

// Close fecha o banco.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
