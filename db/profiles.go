package db

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	pkgerrors "github.com/pkg/errors"

	"imageratio/messages"
)

// Profile is used to define a named rule set and its message templates.
type Profile struct {
	Name       string `json:"name"`
	Rules      string `json:"rules"`
	NotImage   string `json:"not_image,omitempty"`
	WrongRatio string `json:"wrong_ratio,omitempty"`
}

// Messages returns the profile's templates. Empty templates fall back to
// whatever they are merged onto.
func (p *Profile) Messages() messages.Messages {
	return messages.Messages{
		NotImage:   p.NotImage,
		WrongRatio: p.WrongRatio,
	}
}

// ErrProfileExists is returned when a profile already exists.
var ErrProfileExists = errors.New("Profile already exists")

// ErrProfileNotExists is returned when a profile does not exist.
var ErrProfileNotExists = errors.New("Profile does not exist")

const uniqueViolation = "23505"

// GetProfile gets a profile by name. Returns ErrProfileNotExists if there is none.
func (d *DB) GetProfile(ctx context.Context, name string) (*Profile, error) {
	const query = "SELECT name, rules, not_image, wrong_ratio FROM profiles WHERE name = $1"
	var p Profile
	err := d.conn.QueryRow(ctx, query, name).Scan(&p.Name, &p.Rules, &p.NotImage, &p.WrongRatio)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotExists
		}
		return nil, pkgerrors.Wrapf(err, "get profile %s", name)
	}
	return &p, nil
}

// ListProfiles gets every profile ordered by name.
func (d *DB) ListProfiles(ctx context.Context) ([]*Profile, error) {
	const query = "SELECT name, rules, not_image, wrong_ratio FROM profiles ORDER BY name"
	rows, err := d.conn.Query(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list profiles")
	}

	defer rows.Close()
	s := make([]*Profile, 0)
	for rows.Next() {
		var p Profile
		err = rows.Scan(&p.Name, &p.Rules, &p.NotImage, &p.WrongRatio)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "scan profile")
		}
		s = append(s, &p)
	}
	return s, rows.Err()
}

// InsertProfile inserts a profile. Returns ErrProfileExists if the profile already exists.
func (d *DB) InsertProfile(ctx context.Context, p *Profile) error {
	const query = "INSERT INTO profiles (name, rules, not_image, wrong_ratio) VALUES ($1, $2, $3, $4)"
	_, err := d.conn.Exec(ctx, query, p.Name, p.Rules, p.NotImage, p.WrongRatio)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrProfileExists
		}
		return pkgerrors.Wrapf(err, "insert profile %s", p.Name)
	}
	return nil
}

// DeleteProfile deletes a profile. Returns ErrProfileNotExists if the profile does not exist.
func (d *DB) DeleteProfile(ctx context.Context, name string) error {
	const query = "DELETE FROM profiles WHERE name = $1"
	res, err := d.conn.Exec(ctx, query, name)
	if err != nil {
		return pkgerrors.Wrapf(err, "delete profile %s", name)
	}
	if res.RowsAffected() == 0 {
		return ErrProfileNotExists
	}
	return nil
}
