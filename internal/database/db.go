package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cohortclub/berger/internal/manager"
	"github.com/cohortclub/berger/internal/tourney"
	"github.com/cohortclub/berger/internal/util/sliceutil"
	"github.com/cohortclub/berger/internal/util/slogx"
)

type Options struct {
	Path          string        `toml:"path"`
	Debug         bool          `toml:"debug"`
	SlowThreshold time.Duration `toml:"slow-threshold"`
	BusyTimeout   time.Duration `toml:"busy-timeout"`
	UseWAL        bool          `toml:"use-wal"`
}

func (o *Options) FillDefaults() {
	if o.SlowThreshold == 0 {
		o.SlowThreshold = 200 * time.Millisecond
	}
	if o.BusyTimeout == 0 {
		o.BusyTimeout = 1 * time.Minute
	}
}

type DB struct {
	db  *gorm.DB
	log *slog.Logger
}

var _ manager.DB = (*DB)(nil)

func (d *DB) Close() {
	db, err := d.db.DB()
	if err != nil {
		d.log.Error("could not get underlying db", slogx.Err(err))
		return
	}
	err = db.Close()
	if err != nil {
		d.log.Error("could not close db", slogx.Err(err))
	}
}

func buildPath(o Options) string {
	var params []string
	if o.UseWAL {
		params = append(params, "_journal_mode=WAL")
		params = append(params, "_synchronous=NORMAL")
	}
	params = append(params, fmt.Sprintf("_busy_timeout=%v", o.BusyTimeout.Milliseconds()))
	params = append(params, "_foreign_keys=1")
	paramStr := strings.Join(params, "&")
	if paramStr == "" {
		return o.Path
	}
	return o.Path + "?" + paramStr
}

func New(log *slog.Logger, o Options) (*DB, error) {
	o.FillDefaults()

	log.Info("opening db")
	db, err := gorm.Open(sqlite.Open(buildPath(o)), &gorm.Config{
		Logger:         newLogger(log, o),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	d := &DB{db: db, log: log}

	log.Info("migrating db")
	if err := db.AutoMigrate(models...); err != nil {
		d.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	log.Info("db opened")
	return d, nil
}

func (d *DB) GetWaitlist(ctx context.Context, cohort tourney.Cohort) (*tourney.Waitlist, int64, error) {
	var rows []Waitlist
	err := d.db.WithContext(ctx).Where("cohort = ?", string(cohort)).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("get waitlist: %w", err)
	}
	if len(rows) == 0 {
		return &tourney.Waitlist{Cohort: cohort, Players: make(map[string]tourney.Player)}, 0, nil
	}
	doc := rows[0].Doc
	if doc.Players == nil {
		doc.Players = make(map[string]tourney.Player)
	}
	return doc, rows[0].Version, nil
}

func putWaitlistTx(tx *gorm.DB, w *tourney.Waitlist, version int64) error {
	if version == 0 {
		err := tx.Create(&Waitlist{Cohort: string(w.Cohort), Version: 1, Doc: w}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return manager.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("create waitlist: %w", err)
		}
		return nil
	}
	upd := tx.Model(&Waitlist{}).
		Where("cohort = ? AND version = ?", string(w.Cohort), version).
		Select("version", "doc").
		Updates(&Waitlist{Version: version + 1, Doc: w})
	if upd.Error != nil {
		return fmt.Errorf("update waitlist: %w", upd.Error)
	}
	if upd.RowsAffected == 0 {
		return manager.ErrConflict
	}
	return nil
}

func (d *DB) UpdateWaitlist(ctx context.Context, w *tourney.Waitlist, version int64) error {
	return putWaitlistTx(d.db.WithContext(ctx), w, version)
}

func (d *DB) PromoteWaitlist(ctx context.Context, w *tourney.Waitlist, version int64, t *tourney.Tournament) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := putWaitlistTx(tx, w, version); err != nil {
			return err
		}
		err := tx.Create(&Tournament{
			ID:        t.ID(),
			Cohort:    string(t.Cohort),
			Status:    string(t.Status),
			StartDate: t.StartDate,
			Version:   1,
			Doc:       t,
		}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return manager.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("create tournament: %w", err)
		}
		return nil
	})
}

func (d *DB) GetTournament(ctx context.Context, id string) (*tourney.Tournament, int64, error) {
	var rows []Tournament
	err := d.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("get tournament: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, tourney.ErrTournamentNotFound
	}
	return rows[0].Doc, rows[0].Version, nil
}

func (d *DB) UpdateTournament(ctx context.Context, t *tourney.Tournament, version int64) error {
	upd := d.db.WithContext(ctx).Model(&Tournament{}).
		Where("id = ? AND version = ?", t.ID(), version).
		Select("status", "version", "doc").
		Updates(&Tournament{Status: string(t.Status), Version: version + 1, Doc: t})
	if upd.Error != nil {
		return fmt.Errorf("update tournament: %w", upd.Error)
	}
	if upd.RowsAffected == 0 {
		return manager.ErrConflict
	}
	return nil
}

func (d *DB) ListTournaments(ctx context.Context, filter manager.TournamentFilter) ([]*tourney.Tournament, error) {
	tx := d.db.WithContext(ctx).Model(&Tournament{})
	if filter.Cohort != "" {
		tx = tx.Where("cohort = ?", string(filter.Cohort))
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	var rows []Tournament
	if err := tx.Order("start_date DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return sliceutil.Map(rows, func(r Tournament) *tourney.Tournament { return r.Doc }), nil
}
