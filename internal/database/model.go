package database

import (
	"github.com/cohortclub/berger/internal/tourney"
	"github.com/cohortclub/berger/internal/util/timeutil"
)

// Waitlist and Tournament rows store the documents as JSON, with the fields
// used for lookups and filtering mirrored into plain columns. Version backs
// the optimistic writes: every successful update bumps it by one.

type Waitlist struct {
	Cohort  string `gorm:"primaryKey"`
	Version int64
	Doc     *tourney.Waitlist `gorm:"serializer:json"`
}

type Tournament struct {
	ID        string `gorm:"primaryKey"`
	Cohort    string `gorm:"index"`
	Status    string `gorm:"index"`
	StartDate timeutil.UTCTime
	Version   int64
	Doc       *tourney.Tournament `gorm:"serializer:json"`
}

var models = []any{
	&Waitlist{},
	&Tournament{},
}
