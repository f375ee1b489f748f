package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/adsadmin-backend/internal/errors"
	"github.com/unclebandit/adsadmin-backend/internal/model"
)

const reportColumns = `id, title, type, format, user_id, filters, data, created_at`

type ReportRepository struct {
	DB *sql.DB
}

func scanReport(row rowScanner) (*model.Report, error) {
	var r model.Report
	if err := row.Scan(&r.ID, &r.Title, &r.Type, &r.Format, &r.UserID, &r.Filters, &r.Data, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *ReportRepository) List(ctx context.Context) ([]model.Report, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, logStoreError("reports.list", err)
	}
	defer rows.Close()

	reports := []model.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.include(ctx, reports); err != nil {
		return nil, logStoreError("reports.include", err)
	}
	return reports, nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*model.Report, error) {
	rep, err := r.getRow(ctx, id)
	if err != nil || rep == nil {
		return nil, err
	}
	one := []model.Report{*rep}
	if err := r.include(ctx, one); err != nil {
		return nil, logStoreError("reports.include", err)
	}
	return &one[0], nil
}

func (r *ReportRepository) getRow(ctx context.Context, id string) (*model.Report, error) {
	rep, err := scanReport(r.DB.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, logStoreError("reports.get", err)
	}
	return rep, nil
}

func (r *ReportRepository) include(ctx context.Context, reports []model.Report) error {
	ids := make([]string, 0, len(reports))
	for _, rep := range reports {
		ids = append(ids, rep.UserID)
	}
	users, err := loadUsers(ctx, r.DB, uniqueIDs(ids))
	if err != nil {
		return err
	}
	for i := range reports {
		reports[i].User = users[reports[i].UserID]
	}
	return nil
}

func (r *ReportRepository) Create(ctx context.Context, rep *model.Report) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	rep.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO reports (id, title, type, format, user_id, filters, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, rep.ID, rep.Title, rep.Type, rep.Format, rep.UserID,
		rep.Filters, rep.Data, rep.CreatedAt).Scan(&rep.ID)
	return logStoreError("reports.create", err)
}

func (r *ReportRepository) Update(ctx context.Context, id string, patch model.ReportPatch) (*model.Report, error) {
	rep, err := r.getRow(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, appErrors.NewNotFound("report", id)
	}
	patch.Apply(rep)

	query := `
		UPDATE reports SET title=$1, type=$2, format=$3, filters=$4, data=$5
		WHERE id=$6
		RETURNING ` + reportColumns
	updated, err := scanReport(r.DB.QueryRowContext(ctx, query, rep.Title, rep.Type, rep.Format,
		rep.Filters, rep.Data, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("report", id)
		}
		return nil, logStoreError("reports.update", err)
	}
	one := []model.Report{*updated}
	if err := r.include(ctx, one); err != nil {
		return nil, logStoreError("reports.include", err)
	}
	return &one[0], nil
}

func (r *ReportRepository) Delete(ctx context.Context, id string) (*model.Report, error) {
	rep, err := scanReport(r.DB.QueryRowContext(ctx, `DELETE FROM reports WHERE id=$1 RETURNING `+reportColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("report", id)
		}
		return nil, logStoreError("reports.delete", err)
	}
	return rep, nil
}

var _ ReportRepositoryInterface = (*ReportRepository)(nil)
