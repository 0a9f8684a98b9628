package postgres

import (
	"github.com/jmoiron/sqlx"
	"github.com/tesoreria-cl/tesoreria/internal/dashboard"
)

// DashboardRepository runs the aggregate queries with sqlx directly; the
// figures are plain scans with no row lifecycle to manage.
type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) dashboard.Repository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) Totals(orgID int64) (int64, int64, error) {
	var totals struct {
		Ingresos int64 `db:"ingresos"`
		Egresos  int64 `db:"egresos"`
	}
	err := r.db.Get(&totals, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'ingreso'), 0) AS ingresos,
			COALESCE(SUM(amount) FILTER (WHERE type = 'egreso'), 0) AS egresos
		FROM transactions
		WHERE organization_id = $1 AND deleted_at IS NULL`, orgID)
	if err != nil {
		return 0, 0, err
	}
	return totals.Ingresos, totals.Egresos, nil
}

func (r *DashboardRepository) CountRequestsByStatus(orgID int64, status string) (int64, error) {
	var count int64
	err := r.db.Get(&count, `
		SELECT COUNT(*) FROM payment_requests
		WHERE organization_id = $1 AND status = $2`, orgID, status)
	return count, err
}

func (r *DashboardRepository) MonthlyTotals(orgID int64, months int) ([]dashboard.MonthlyTotal, error) {
	rows := []dashboard.MonthlyTotal{}
	err := r.db.Select(&rows, `
		SELECT
			to_char(date_trunc('month', date), 'YYYY-MM') AS month,
			COALESCE(SUM(amount) FILTER (WHERE type = 'ingreso'), 0) AS ingresos,
			COALESCE(SUM(amount) FILTER (WHERE type = 'egreso'), 0) AS egresos
		FROM transactions
		WHERE organization_id = $1
		  AND deleted_at IS NULL
		  AND date >= date_trunc('month', now()) - ($2 - 1) * INTERVAL '1 month'
		GROUP BY 1
		ORDER BY 1 ASC`, orgID, months)
	return rows, err
}
