package postgresql

import (
	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/timerange"
	"github.com/jackc/pgx/v5/pgtype"
)

const microsPerSecond = 1_000_000

// clockParam encodes a ClockTime for a nullable TIME column.
func clockParam(c timerange.ClockTime) pgtype.Time {
	if !c.Valid() {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: int64(c.Seconds()) * microsPerSecond, Valid: true}
}

// clockValue decodes a reference-data TIME column. Midnight is kept.
func clockValue(t pgtype.Time) timerange.ClockTime {
	if !t.Valid {
		return timerange.NoPunch
	}
	return timerange.ClockFromSeconds(int(t.Microseconds / microsPerSecond))
}

// punchValue decodes a punch column. Legacy rows store 00:00:00 for a missing punch.
func punchValue(t pgtype.Time) timerange.ClockTime {
	c := clockValue(t)
	if c.Valid() && c.Seconds() == 0 {
		return timerange.NoPunch
	}
	return c
}

type punchColumns struct {
	inMorning, outMorning, inAfternoon, outAfternoon pgtype.Time
}

func (p *punchColumns) dest() []any {
	return []any{&p.inMorning, &p.outMorning, &p.inAfternoon, &p.outAfternoon}
}

func (p punchColumns) punches() attendance.Punches {
	return attendance.Punches{
		TimeInMorning:    punchValue(p.inMorning),
		TimeOutMorning:   punchValue(p.outMorning),
		TimeInAfternoon:  punchValue(p.inAfternoon),
		TimeOutAfternoon: punchValue(p.outAfternoon),
	}
}

func punchParams(p attendance.Punches) []any {
	return []any{
		clockParam(p.TimeInMorning),
		clockParam(p.TimeOutMorning),
		clockParam(p.TimeInAfternoon),
		clockParam(p.TimeOutAfternoon),
	}
}
