// Package store connects the crawler to the attraction database and to the
// files a batch reads and writes.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/koizuka/placescraper"
)

// SQLStore reads attractions from the `Attraction` table and writes crawled
// businesses to the `AttractionBusiness` table. The queries work with both
// MySQL and SQLite.
type SQLStore struct {
	db  *sql.DB
	Now func() time.Time
}

// Open connects with a registered database/sql driver and checks the connection.
func Open(ctx context.Context, driverName, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

func New(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, Now: time.Now}
}

func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) FetchAttractions(ctx context.Context) ([]placescraper.Attraction, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT `Id`, `Name`, `Zipcode`, `Add` FROM `Attraction` ORDER BY `Id`")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attractions []placescraper.Attraction
	for rows.Next() {
		var id, name, zipcode, add sql.NullString
		if err := rows.Scan(&id, &name, &zipcode, &add); err != nil {
			return nil, err
		}
		attractions = append(attractions, placescraper.Attraction{
			Id:      id.String,
			Name:    strings.TrimSpace(name.String),
			Zipcode: strings.TrimSpace(zipcode.String),
			Add:     strings.TrimSpace(add.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attractions, nil
}

// EnsureSchema creates the result table if it doesn't exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	const ddl = "CREATE TABLE IF NOT EXISTS `AttractionBusiness` (" +
		"`Id` VARCHAR(64) NOT NULL PRIMARY KEY," +
		"`Name` VARCHAR(255) NULL," +
		"`Rating` VARCHAR(16) NULL," +
		"`TotalReviews` INT NULL," +
		"`PlaceType` VARCHAR(255) NULL," +
		"`Address` VARCHAR(512) NULL," +
		"`Website` VARCHAR(512) NULL," +
		"`PhoneNumber` VARCHAR(64) NULL," +
		"`OpeningHours` TEXT NULL," +
		"`Map` TEXT NULL," +
		"`CrawledAt` TIMESTAMP NULL)"
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Persist replaces the stored business of every row's attraction.
func (s *SQLStore) Persist(ctx context.Context, rows []placescraper.BusinessRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	del, err := tx.PrepareContext(ctx, "DELETE FROM `AttractionBusiness` WHERE `Id` = ?")
	if err != nil {
		return err
	}
	defer del.Close()

	ins, err := tx.PrepareContext(ctx, "INSERT INTO `AttractionBusiness` "+
		"(`Id`, `Name`, `Rating`, `TotalReviews`, `PlaceType`, `Address`, `Website`, `PhoneNumber`, `OpeningHours`, `Map`, `CrawledAt`) "+
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer ins.Close()

	now := s.Now()
	for _, row := range rows {
		hours, err := openingHoursColumn(row.OpeningHours)
		if err != nil {
			return fmt.Errorf("%v: %w", row.Id, err)
		}
		if _, err := del.ExecContext(ctx, row.Id); err != nil {
			return fmt.Errorf("%v: %w", row.Id, err)
		}
		if _, err := ins.ExecContext(ctx,
			row.Id,
			nullString(row.Name),
			nullString(row.Rating),
			reviewsColumn(row.NormalizedRecord),
			nullString(row.PlaceType),
			nullString(row.Address),
			nullString(row.Website),
			nullString(row.PhoneNumber),
			hours,
			nullString(row.Map),
			now,
		); err != nil {
			return fmt.Errorf("%v: %w", row.Id, err)
		}
	}
	return tx.Commit()
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func reviewsColumn(record placescraper.NormalizedRecord) sql.NullInt64 {
	n, ok := record.Reviews()
	if !ok {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

func openingHoursColumn(schedule placescraper.Schedule) (sql.NullString, error) {
	if schedule == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(schedule)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
