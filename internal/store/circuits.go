package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/abbycross/qiskit/internal/circuit"
	"github.com/abbycross/qiskit/internal/duration"
)

var (
	// ErrNotFound is returned when no circuit matches an id or name.
	ErrNotFound = errors.New("circuit not found")

	// ErrFingerprintMismatch is returned when a stored payload no longer
	// hashes to its recorded fingerprint.
	ErrFingerprintMismatch = errors.New("fingerprint mismatch")

	// ErrClosed is returned by every method called after Close.
	ErrClosed = errors.New("store is closed")
)

// Record is the metadata of a stored circuit.
type Record struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
	NumQubits   int    `json:"num_qubits"`
	Resolved    bool   `json:"resolved"`
	ParentID    string `json:"parent_id,omitempty"`

	// Bindings is the canonical JSON of the mapping that produced this
	// row from its parent, or "{}".
	Bindings string `json:"bindings"`
	Seq      int64  `json:"seq"`
}

// Save stores c under name and returns its record.
func (s *Store) Save(ctx context.Context, name string, c *circuit.Circuit) (Record, error) {
	return s.insert(ctx, name, c, "", nil)
}

// Derive assigns b to the circuit stored under parentID and stores the
// result as a new row linked to its parent. The parent is left as is.
func (s *Store) Derive(ctx context.Context, parentID string, b duration.Bindings) (Record, *circuit.Circuit, error) {
	parent, rec, err := s.load(ctx, parentID)
	if err != nil {
		return Record{}, nil, fmt.Errorf("derive: %w", err)
	}
	bound, err := parent.AssignParameters(b)
	if err != nil {
		return Record{}, nil, fmt.Errorf("derive from %s: %w", parentID, err)
	}
	child, err := s.insert(ctx, rec.Name, bound, parentID, b)
	if err != nil {
		return Record{}, nil, err
	}
	return child, bound, nil
}

func (s *Store) insert(ctx context.Context, name string, c *circuit.Circuit, parentID string, b duration.Bindings) (Record, error) {
	payload, err := c.MarshalBinary()
	if err != nil {
		return Record{}, fmt.Errorf("save circuit %q: %w", name, err)
	}
	fp, err := c.Fingerprint()
	if err != nil {
		return Record{}, fmt.Errorf("save circuit %q: %w", name, err)
	}
	bindings, err := marshalBindings(b)
	if err != nil {
		return Record{}, fmt.Errorf("save circuit %q: %w", name, err)
	}

	rec := Record{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Name:        name,
		Fingerprint: fp,
		NumQubits:   c.NumQubits(),
		Resolved:    c.IsResolved(),
		ParentID:    parentID,
		Bindings:    bindings,
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM circuits`).Scan(&rec.Seq); err != nil {
			return fmt.Errorf("next seq: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO circuits
			(id, name, fingerprint, num_qubits, resolved, payload, parent_id, bindings, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rec.ID,
			rec.Name,
			rec.Fingerprint,
			rec.NumQubits,
			rec.Resolved,
			payload,
			nullString(rec.ParentID),
			rec.Bindings,
			rec.Seq,
		)
		if err != nil {
			return fmt.Errorf("insert circuit: %w", err)
		}
		return nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("save circuit %q: %w", name, err)
	}

	s.logger.Debug().
		Str("id", rec.ID).
		Str("name", rec.Name).
		Int64("seq", rec.Seq).
		Str("fingerprint", rec.Fingerprint).
		Msg("circuit saved")
	return rec, nil
}

// Load returns the circuit stored under id.
func (s *Store) Load(ctx context.Context, id string) (*circuit.Circuit, error) {
	c, _, err := s.load(ctx, id)
	return c, err
}

// Get returns the record stored under id without decoding the payload.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	db, err := s.conn()
	if err != nil {
		return Record{}, err
	}
	row := db.QueryRowContext(ctx, `
		SELECT id, name, fingerprint, num_qubits, resolved, parent_id, bindings, seq
		FROM circuits
		WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get circuit %s: %w", id, err)
	}
	return rec, nil
}

// LoadLatest returns the most recently saved circuit with the given name.
func (s *Store) LoadLatest(ctx context.Context, name string) (*circuit.Circuit, Record, error) {
	db, err := s.conn()
	if err != nil {
		return nil, Record{}, err
	}
	var id string
	err = db.QueryRowContext(ctx, `
		SELECT id FROM circuits
		WHERE name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Record{}, fmt.Errorf("%w: name %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, Record{}, fmt.Errorf("load latest %q: %w", name, err)
	}
	return s.load(ctx, id)
}

// List returns every record in seq order.
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, fingerprint, num_qubits, resolved, parent_id, bindings, seq
		FROM circuits
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query circuits: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan circuit: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate circuits: %w", err)
	}
	return records, nil
}

func (s *Store) load(ctx context.Context, id string) (*circuit.Circuit, Record, error) {
	db, err := s.conn()
	if err != nil {
		return nil, Record{}, err
	}
	var payload []byte
	row := db.QueryRowContext(ctx, `
		SELECT id, name, fingerprint, num_qubits, resolved, parent_id, bindings, seq, payload
		FROM circuits
		WHERE id = ?
	`, id)
	rec, err := scanRecord(row, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, Record{}, fmt.Errorf("load circuit %s: %w", id, err)
	}

	c, err := circuit.DecodeBinary(payload)
	if err != nil {
		return nil, Record{}, fmt.Errorf("decode circuit %s: %w", id, err)
	}
	fp, err := c.Fingerprint()
	if err != nil {
		return nil, Record{}, fmt.Errorf("fingerprint circuit %s: %w", id, err)
	}
	if fp != rec.Fingerprint {
		return nil, Record{}, fmt.Errorf("%w: circuit %s stored %s, computed %s", ErrFingerprintMismatch, id, rec.Fingerprint, fp)
	}
	return c, rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads the record columns followed by any extra columns.
func scanRecord(row scanner, extra ...any) (Record, error) {
	var rec Record
	var parent sql.NullString
	dest := []any{
		&rec.ID,
		&rec.Name,
		&rec.Fingerprint,
		&rec.NumQubits,
		&rec.Resolved,
		&parent,
		&rec.Bindings,
		&rec.Seq,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Record{}, err
	}
	rec.ParentID = parent.String
	return rec, nil
}

// marshalBindings renders b as JSON with sorted keys.
func marshalBindings(b duration.Bindings) (string, error) {
	if len(b) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]any(b))
	if err != nil {
		return "", fmt.Errorf("marshal bindings: %w", err)
	}
	return string(data), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
